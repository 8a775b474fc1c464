package gstorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/zivilschutz/zsadmin/server/logger"
	"google.golang.org/api/option"
)

const TRANSFER_TIMEOUT = 50 * time.Second

var (
	ErrObjectNotExist = storage.ErrObjectNotExist

	logg = logger.NewLogger()
)

// BlobStore keeps uploaded files. Object names are relative to the store's prefix.
type BlobStore interface {
	Upload(ctx context.Context, object, contentType string, r io.Reader) error
	Open(ctx context.Context, object string) (io.ReadCloser, error)
	Delete(ctx context.Context, object string) error
}

type GStorage struct {
	storageClient *storage.Client
	bucket        string
	prefix        string
}

func NewGStorage(credentialsFilePath, bucket, prefix string) (*GStorage, error) {
	var client *storage.Client
	var err error

	if credentialsFilePath != "" {
		client, err = storage.NewClient(context.Background(), option.WithCredentialsFile(credentialsFilePath))
	} else {
		client, err = storage.NewClient(context.Background())
	}

	if err != nil {
		return nil, fmt.Errorf("NewGStorage: %v", err)
	}

	return &GStorage{storageClient: client, bucket: bucket, prefix: prefix}, nil
}

func (gs *GStorage) Upload(ctx context.Context, object, contentType string, r io.Reader) error {
	wc := gs.object(object).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return fmt.Errorf("io.Copy: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %v", err)
	}

	logg.Infof("Blob %v uploaded", object)
	return nil
}

func (gs *GStorage) Open(ctx context.Context, object string) (io.ReadCloser, error) {
	rc, err := gs.object(object).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("Object(%q).NewReader: %v", object, err)
	}

	return rc, nil
}

func (gs *GStorage) Delete(ctx context.Context, object string) error {
	err := gs.object(object).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		return err
	}
	if err != nil {
		return fmt.Errorf("Object(%q).Delete: %v", object, err)
	}

	return nil
}

// UploadFile uploads a local file under its base name.
func (gs *GStorage) UploadFile(filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("os.Open: %v", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), TRANSFER_TIMEOUT)
	defer cancel()

	return gs.Upload(ctx, filepath.Base(filePath), "application/octet-stream", f)
}

// DownloadFile downloads an object to a local file.
func (gs *GStorage) DownloadFile(object string, destFileName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), TRANSFER_TIMEOUT)
	defer cancel()

	rc, err := gs.Open(ctx, object)
	if err != nil {
		return err
	}
	defer rc.Close()

	f, err := os.OpenFile(destFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("os.Create: %v", err)
	}

	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return fmt.Errorf("io.Copy: %v", err)
	}

	if err = f.Close(); err != nil {
		return fmt.Errorf("f.Close: %v", err)
	}

	logg.Infof("Blob %v downloaded to local file %v", object, destFileName)
	return nil
}

func (gs *GStorage) Close() error {
	return gs.storageClient.Close()
}

func (gs *GStorage) object(name string) *storage.ObjectHandle {
	return gs.storageClient.Bucket(gs.bucket).Object(path.Join(gs.prefix, name))
}

// PersonFileObject is where a file uploaded for a person is stored.
func PersonFileObject(personID uint, id, fileName string) string {
	return path.Join("persons", fmt.Sprint(personID), fmt.Sprintf("%s-%s", id, filepath.Base(fileName)))
}
