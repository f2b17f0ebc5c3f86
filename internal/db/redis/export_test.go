package redis

import "github.com/redis/rueidis"

func newTestStore(c rueidis.Client) *Store {
	return &Store{client: c}
}
