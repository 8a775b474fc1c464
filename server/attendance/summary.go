package attendance

import (
	"sort"

	"github.com/zivilschutz/zsadmin/server/models"
)

type SummaryEntry struct {
	Training models.Training `json:"training"`
	Days     []DayStatus     `json:"days"`
}

type DayStatus struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// Summary is a person's participation over a set of trainings, usually one year.
type Summary struct {
	PersonID uint           `json:"person_id"`
	Totals   Totals         `json:"totals"`
	Entries  []SummaryEntry `json:"entries"`
}

// Summarize collects the person's status for every day of the given trainings,
// ordered by start date. Records of other persons are ignored.
func Summarize(personID uint, trainings []models.Training, records []models.Attendance) Summary {
	summary := Summary{PersonID: personID, Entries: []SummaryEntry{}}
	statuses := indexRecords(records)

	sorted := make([]models.Training, len(trainings))
	copy(sorted, trainings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartDate != sorted[j].StartDate {
			return sorted[i].StartDate < sorted[j].StartDate
		}
		return sorted[i].Title < sorted[j].Title
	})

	for _, training := range sorted {
		days, err := TrainingDays(training)
		if err != nil {
			continue
		}

		entry := SummaryEntry{Training: training, Days: []DayStatus{}}
		for _, day := range days {
			status := statuses[cellKey{personID, training.ID, day}]
			summary.Totals.add(status, training.Required)
			entry.Days = append(entry.Days, DayStatus{Date: day, Status: status})
		}
		summary.Entries = append(summary.Entries, entry)
	}

	return summary
}

// Rate is the share of recorded days attended, in percent. Open days are not counted.
func (t Totals) Rate() float64 {
	recorded := t.Attended + t.NotAttended + t.Excused
	if recorded == 0 {
		return 0
	}
	return float64(t.Attended) * 100 / float64(recorded)
}
