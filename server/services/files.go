package services

import (
	"context"
	"errors"
	"io"
	"sort"

	"github.com/google/uuid"
	"github.com/zivilschutz/zsadmin/server/apperr"
	"github.com/zivilschutz/zsadmin/server/gstorage"
	"github.com/zivilschutz/zsadmin/server/models"
)

const MAX_UPLOAD_SIZE = 10 << 20

type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader

	// Photo makes the upload the person's photo.
	Photo bool
}

type FileService struct {
	repo    models.Repository[models.UploadedFile]
	blobs   gstorage.BlobStore
	persons *PersonService
}

func newFileService(deps Deps, persons *PersonService) *FileService {
	return &FileService{repo: models.Repository[models.UploadedFile]{}, blobs: deps.Blobs, persons: persons}
}

func (s *FileService) Enabled() bool {
	return s.blobs != nil
}

// Upload stores the blob, then its record. When the record cannot be written the blob is
// removed again.
func (s *FileService) Upload(ctx context.Context, personID uint, upload Upload, uploader string) (*models.UploadedFile, error) {
	if !s.Enabled() {
		return nil, apperr.New(apperr.ErrStorageDisabled)
	}

	if upload.Size > MAX_UPLOAD_SIZE {
		return nil, apperr.New(apperr.ErrFileTooLarge)
	}

	err := s.persons.Exists(personID)
	if err != nil {
		return nil, err
	}

	object := gstorage.PersonFileObject(personID, uuid.NewString(), upload.FileName)
	err = s.blobs.Upload(ctx, object, upload.ContentType, io.LimitReader(upload.Body, MAX_UPLOAD_SIZE+1))
	if err != nil {
		return nil, err
	}

	file := &models.UploadedFile{
		PersonID:    personID,
		ObjectName:  object,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		Size:        upload.Size,
		UploadedBy:  uploader,
	}

	err = s.repo.Add(file)
	if err != nil {
		if delErr := s.blobs.Delete(ctx, object); delErr != nil {
			logg.Errorf("could not remove blob %v after failed upload: %v", object, delErr)
		}
		return nil, err
	}

	if upload.Photo {
		err = s.persons.SetPhoto(personID, object, uploader)
		if err != nil {
			return file, err
		}
	}

	return file, nil
}

func (s *FileService) ForPerson(personID uint) ([]models.UploadedFile, error) {
	files, err := s.repo.Where("person_id", personID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool { return files[i].CreatedAt.After(files[j].CreatedAt) })
	return files, nil
}

func (s *FileService) Get(id uint) (*models.UploadedFile, error) {
	file, err := s.repo.ByID(id)
	if err != nil {
		return nil, apperr.NotFoundAs(err, apperr.ErrFileNotFound)
	}
	return file, nil
}

// Open returns the record and a reader for the blob; the caller closes the reader.
func (s *FileService) Open(ctx context.Context, id uint) (*models.UploadedFile, io.ReadCloser, error) {
	if !s.Enabled() {
		return nil, nil, apperr.New(apperr.ErrStorageDisabled)
	}

	file, err := s.Get(id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Open(ctx, file.ObjectName)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		return nil, nil, apperr.Wrap(apperr.ErrFileNotFound, err)
	}
	if err != nil {
		return nil, nil, err
	}

	return file, rc, nil
}

// Delete removes blob and record. A blob that is already gone does not block the delete.
func (s *FileService) Delete(ctx context.Context, id uint) error {
	if !s.Enabled() {
		return apperr.New(apperr.ErrStorageDisabled)
	}

	file, err := s.Get(id)
	if err != nil {
		return err
	}

	err = s.blobs.Delete(ctx, file.ObjectName)
	if err != nil && !errors.Is(err, gstorage.ErrObjectNotExist) {
		return err
	}

	err = s.repo.Delete(id)
	if err != nil {
		return apperr.NotFoundAs(err, apperr.ErrFileNotFound)
	}

	person, err := s.persons.Get(file.PersonID)
	if err == nil && person.PhotoObject == file.ObjectName {
		return s.persons.SetPhoto(person.ID, "", file.UploadedBy)
	}

	return nil
}
