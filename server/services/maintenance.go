package services

import (
	"context"

	"github.com/zivilschutz/zsadmin/server/models"
)

// MaintenanceService finds and removes records whose person no longer exists.
type MaintenanceService struct {
	deps        Deps
	attendances *AttendanceService
	contacts    *ContactService
	files       *FileService
}

func (s *MaintenanceService) Orphans() (*models.OrphanReport, error) {
	return models.FindOrphans()
}

// DeleteOrphans removes orphaned attendance and contact records, and orphaned files
// including their blobs when storage is configured. It returns the number of removed records.
func (s *MaintenanceService) DeleteOrphans(ctx context.Context) (int64, error) {
	report, err := models.FindOrphans()
	if err != nil {
		return 0, err
	}

	deleted, err := models.DeleteOrphanRecords()
	s.attendances.Invalidate()
	s.contacts.Invalidate()
	if err != nil {
		return deleted, err
	}

	if !s.files.Enabled() {
		return deleted, nil
	}

	for _, file := range report.Files {
		err = s.files.Delete(ctx, file.ID)
		if err != nil {
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}
