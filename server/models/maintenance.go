package models

const ORPHAN_CONDITION = "person_id NOT IN (SELECT id FROM persons)"

// OrphanReport lists records that still reference a person who no longer exists.
type OrphanReport struct {
	Attendances       []Attendance       `json:"attendances"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts"`
	Files             []UploadedFile     `json:"files"`
}

func (r *OrphanReport) Total() int {
	return len(r.Attendances) + len(r.EmergencyContacts) + len(r.Files)
}

func FindOrphans() (*OrphanReport, error) {
	report := OrphanReport{}

	err := db.Where(ORPHAN_CONDITION).Find(&report.Attendances).Error
	if err != nil {
		return nil, err
	}

	err = db.Where(ORPHAN_CONDITION).Find(&report.EmergencyContacts).Error
	if err != nil {
		return nil, err
	}

	err = db.Where(ORPHAN_CONDITION).Find(&report.Files).Error
	if err != nil {
		return nil, err
	}

	return &report, nil
}

// DeleteOrphanRecords removes orphaned attendance and emergency contact records.
// Orphaned files are left to the caller, which also has to remove the blobs.
func DeleteOrphanRecords() (int64, error) {
	var deleted int64

	res := db.Where(ORPHAN_CONDITION).Delete(&Attendance{})
	if res.Error != nil {
		return deleted, res.Error
	}
	deleted += res.RowsAffected

	res = db.Where(ORPHAN_CONDITION).Delete(&EmergencyContact{})
	if res.Error != nil {
		return deleted, res.Error
	}
	deleted += res.RowsAffected

	return deleted, nil
}
