// Package report renders record sets for download: CSV exports and
// HTML-for-print reports.
package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"health-companion-api/internal/model"
)

var (
	MedicationColumns  = []string{"medicationName", "dosage", "frequency", "time", "nextDose", "notes", "createdAt"}
	AppointmentColumns = []string{"doctorName", "speciality", "location", "date", "time", "notes", "status", "notified", "notifiedAt", "createdAt"}
)

// MedicationsCSV returns "" for an empty set.
func MedicationsCSV(meds []model.MedicationReminder) string {
	return table(MedicationColumns, lo.Map(meds, func(m model.MedicationReminder, _ int) []string {
		return []string{m.MedicationName, m.Dosage, m.Frequency, m.Time, isoPtr(m.NextDose), m.Notes, iso(m.CreatedAt)}
	}))
}

// AppointmentsCSV returns "" for an empty set.
func AppointmentsCSV(appts []model.Appointment) string {
	return table(AppointmentColumns, lo.Map(appts, func(a model.Appointment, _ int) []string {
		return []string{a.DoctorName, a.Specialty, a.Location, iso(a.Date), a.Time, a.Notes, a.Status,
			strconv.FormatBool(a.Notified), isoPtr(a.NotifiedAt), iso(a.CreatedAt)}
	}))
}

// table writes a bare header line then one line per row with every cell
// quoted. encoding/csv only quotes cells that need it.
func table(header []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	for _, row := range rows {
		b.WriteByte('\n')
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			b.WriteByte('"')
		}
	}
	return b.String()
}

// iso is RFC 3339 in UTC with millisecond precision.
func iso(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func isoPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return iso(*t)
}
