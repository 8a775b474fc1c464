package gstorage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// BlobStoreStub is an in-memory BlobStore.
type BlobStoreStub struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Types   map[string]string
	Err     error
}

func NewBlobStoreStub() *BlobStoreStub {
	return &BlobStoreStub{Objects: map[string][]byte{}, Types: map[string]string{}}
}

func (s *BlobStoreStub) Upload(ctx context.Context, object, contentType string, r io.Reader) error {
	if s.Err != nil {
		return s.Err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[object] = data
	s.Types[object] = contentType
	return nil
}

func (s *BlobStoreStub) Open(ctx context.Context, object string) (io.ReadCloser, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Objects[object]
	if !ok {
		return nil, ErrObjectNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *BlobStoreStub) Delete(ctx context.Context, object string) error {
	if s.Err != nil {
		return s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Objects[object]; !ok {
		return ErrObjectNotExist
	}
	delete(s.Objects, object)
	return nil
}
