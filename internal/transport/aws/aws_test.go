package aws

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimeservice"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/photodex/internal/metrics"
	"github.com/kailas-cloud/photodex/internal/usecase/interpret"
)

func TestMain(m *testing.M) {
	metrics.RegisterProviderMetrics()
	os.Exit(m.Run())
}

// --- Client config ---

func applyLoadOptions(t *testing.T, cfg Config) awsconfig.LoadOptions {
	t.Helper()
	var lo awsconfig.LoadOptions
	for _, opt := range loadOptions(cfg) {
		if err := opt(&lo); err != nil {
			t.Fatalf("apply option: %v", err)
		}
	}
	return lo
}

func TestLoadOptions_TimeoutAndRetries(t *testing.T) {
	lo := applyLoadOptions(t, Config{Region: "eu-west-1", MaxAttempts: 1, Timeout: 10 * time.Second})

	if lo.Region != "eu-west-1" {
		t.Errorf("expected region eu-west-1, got %q", lo.Region)
	}
	if lo.RetryMaxAttempts != 1 {
		t.Errorf("expected 1 attempt, got %d", lo.RetryMaxAttempts)
	}
	hc, ok := lo.HTTPClient.(*awshttp.BuildableClient)
	if !ok {
		t.Fatalf("expected buildable HTTP client, got %T", lo.HTTPClient)
	}
	if hc.GetTimeout() != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", hc.GetTimeout())
	}
}

func TestLoadOptions_ZeroLeavesSDKDefaults(t *testing.T) {
	lo := applyLoadOptions(t, Config{})
	if lo.HTTPClient != nil || lo.Region != "" || lo.RetryMaxAttempts != 0 {
		t.Errorf("expected untouched load options, got %+v", lo)
	}
}

// --- Fakes ---

type fakeS3 struct {
	in  *s3.HeadObjectInput
	out *s3.HeadObjectOutput
	err error
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.in = in
	return f.out, f.err
}

type fakeRekognition struct {
	labelsIn  *rekognition.DetectLabelsInput
	labelsOut *rekognition.DetectLabelsOutput
	facesOut  *rekognition.DetectFacesOutput
	err       error
}

func (f *fakeRekognition) DetectLabels(
	_ context.Context, in *rekognition.DetectLabelsInput, _ ...func(*rekognition.Options),
) (*rekognition.DetectLabelsOutput, error) {
	f.labelsIn = in
	return f.labelsOut, f.err
}

func (f *fakeRekognition) DetectFaces(
	_ context.Context, _ *rekognition.DetectFacesInput, _ ...func(*rekognition.Options),
) (*rekognition.DetectFacesOutput, error) {
	return f.facesOut, f.err
}

type fakeLex struct {
	in  *lexruntimeservice.PostTextInput
	out *lexruntimeservice.PostTextOutput
	err error
}

func (f *fakeLex) PostText(
	_ context.Context, in *lexruntimeservice.PostTextInput, _ ...func(*lexruntimeservice.Options),
) (*lexruntimeservice.PostTextOutput, error) {
	f.in = in
	return f.out, f.err
}

var (
	_ HeadObjectAPI  = (*fakeS3)(nil)
	_ RekognitionAPI = (*fakeRekognition)(nil)
	_ PostTextAPI    = (*fakeLex)(nil)
)

// --- MetadataReader ---

func TestHeadObject_CustomLabels(t *testing.T) {
	f := &fakeS3{out: &s3.HeadObjectOutput{Metadata: map[string]string{"customlabels": "Beach,Sunset"}}}

	meta, err := NewMetadataReader(f).HeadObject(context.Background(), "photos", "trip.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.CustomLabels == nil || *meta.CustomLabels != "Beach,Sunset" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if aws.ToString(f.in.Bucket) != "photos" || aws.ToString(f.in.Key) != "trip.jpg" {
		t.Errorf("unexpected input: %+v", f.in)
	}
}

func TestHeadObject_NoMetadata(t *testing.T) {
	f := &fakeS3{out: &s3.HeadObjectOutput{}}

	meta, err := NewMetadataReader(f).HeadObject(context.Background(), "photos", "trip.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.CustomLabels != nil {
		t.Errorf("expected absent custom labels, got %q", *meta.CustomLabels)
	}
}

func TestHeadObject_APIError(t *testing.T) {
	f := &fakeS3{err: &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}}
	before := testutil.ToFloat64(metrics.ProviderRequestsTotal.WithLabelValues("s3", "head_object", "error"))

	_, err := NewMetadataReader(f).HeadObject(context.Background(), "photos", "trip.jpg")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "AccessDenied") {
		t.Errorf("expected error code in message, got %v", err)
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		t.Error("expected API error in chain")
	}
	after := testutil.ToFloat64(metrics.ProviderRequestsTotal.WithLabelValues("s3", "head_object", "error"))
	if after-before != 1 {
		t.Errorf("expected error counter +1, got %f", after-before)
	}
}

// --- Recognizer ---

func TestDetectLabels_Order(t *testing.T) {
	f := &fakeRekognition{labelsOut: &rekognition.DetectLabelsOutput{Labels: []types.Label{
		{Name: aws.String("Dog")},
		{Name: aws.String("Pet")},
		{Name: nil},
		{Name: aws.String("Dog")},
	}}}

	labels, err := NewRecognizer(f, RecognizerConfig{MaxLabels: 10, MinConfidence: 80}).
		DetectLabels(context.Background(), "photos", "dog.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Dog", "Pet", "Dog"}
	if len(labels) != len(want) {
		t.Fatalf("expected %v, got %v", want, labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d: expected %q, got %q", i, want[i], labels[i])
		}
	}

	obj := f.labelsIn.Image.S3Object
	if aws.ToString(obj.Bucket) != "photos" || aws.ToString(obj.Name) != "dog.jpg" {
		t.Errorf("unexpected image reference: %+v", obj)
	}
	if aws.ToInt32(f.labelsIn.MaxLabels) != 10 || aws.ToFloat32(f.labelsIn.MinConfidence) != 80 {
		t.Errorf("unexpected bounds: %v %v", f.labelsIn.MaxLabels, f.labelsIn.MinConfidence)
	}
}

func TestDetectLabels_DefaultsLeaveBoundsUnset(t *testing.T) {
	f := &fakeRekognition{labelsOut: &rekognition.DetectLabelsOutput{}}

	labels, err := NewRecognizer(f, RecognizerConfig{}).DetectLabels(context.Background(), "b", "k.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(labels) != 0 {
		t.Errorf("expected no labels, got %v", labels)
	}
	if f.labelsIn.MaxLabels != nil || f.labelsIn.MinConfidence != nil {
		t.Error("zero config must not set bounds")
	}
}

func TestDetectLabels_Error(t *testing.T) {
	f := &fakeRekognition{err: errors.New("throttled")}

	if _, err := NewRecognizer(f, RecognizerConfig{}).DetectLabels(context.Background(), "b", "k.jpg"); err == nil {
		t.Fatal("expected error")
	}
}

func TestDetectFaces_Count(t *testing.T) {
	f := &fakeRekognition{facesOut: &rekognition.DetectFacesOutput{FaceDetails: make([]types.FaceDetail, 3)}}

	n, err := NewRecognizer(f, RecognizerConfig{}).DetectFaces(context.Background(), "b", "group.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 faces, got %d", n)
	}
}

// --- LexNLU ---

func TestLexPostText_EmptySlotsAreNil(t *testing.T) {
	f := &fakeLex{out: &lexruntimeservice.PostTextOutput{Slots: map[string]string{
		"keyone": "dogs",
		"keytwo": "",
	}}}

	slots, err := NewLexNLU(f).PostText(context.Background(), interpret.Utterance{
		BotName: "photo_keyword_key", BotAlias: "alpha", SessionID: "sess-1", Text: "dogs",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slots["keyone"] == nil || *slots["keyone"] != "dogs" {
		t.Errorf("unexpected keyone: %v", slots["keyone"])
	}
	if v, ok := slots["keytwo"]; !ok || v != nil {
		t.Errorf("expected keytwo present and nil, got %v", v)
	}

	if aws.ToString(f.in.BotName) != "photo_keyword_key" || aws.ToString(f.in.BotAlias) != "alpha" {
		t.Errorf("unexpected bot: %+v", f.in)
	}
	if aws.ToString(f.in.UserId) != "sess-1" || aws.ToString(f.in.InputText) != "dogs" {
		t.Errorf("unexpected session or text: %+v", f.in)
	}
}

func TestLexPostText_Error(t *testing.T) {
	f := &fakeLex{err: &smithy.GenericAPIError{Code: "NotFoundException", Message: "bot"}}

	_, err := NewLexNLU(f).PostText(context.Background(), interpret.Utterance{Text: "dogs"})
	if err == nil || !strings.Contains(err.Error(), "NotFoundException") {
		t.Errorf("expected API error code, got %v", err)
	}
}
