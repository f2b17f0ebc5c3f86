package photo

import (
	"encoding/json"
	"fmt"

	domphoto "github.com/kailas-cloud/photodex/internal/domain/photo"
)

// jsonDoc is the stored JSON shape; field names are what the FT index reads.
type jsonDoc struct {
	ObjectKey        string `json:"objectKey"`
	Bucket           string `json:"bucket"`
	CreatedTimestamp string `json:"createdTimestamp"`
	Labels           string `json:"labels"`
}

func toJSONDoc(doc *domphoto.Document) jsonDoc {
	return jsonDoc{
		ObjectKey:        doc.ObjectKey(),
		Bucket:           doc.Bucket(),
		CreatedTimestamp: doc.CreatedTimestamp(),
		Labels:           doc.Labels(),
	}
}

func (d jsonDoc) toDomain() domphoto.Document {
	return domphoto.Reconstruct(d.ObjectKey, d.Bucket, d.CreatedTimestamp, d.Labels)
}

// parseJSONGetResult decodes a JSON.GET "$" reply, which is always an array of matches.
func parseJSONGetResult(raw []byte) (domphoto.Document, bool, error) {
	var docs []jsonDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domphoto.Document{}, false, fmt.Errorf("unmarshal photo document: %w", err)
	}
	if len(docs) == 0 {
		return domphoto.Document{}, false, nil
	}
	return docs[0].toDomain(), true, nil
}
