package report

import (
	"html/template"
	"io"
	"time"

	"health-companion-api/internal/model"
)

const page = `<!DOCTYPE html>
<html>
<head>
  <title>{{.Title}} - {{.Stamp}}</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 20px; }
    h1 { color: #0056b3; }
    table { width: 100%; border-collapse: collapse; margin-top: 20px; }
    th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
    th { background-color: #f2f2f2; }
    tr:nth-child(even) { background-color: #f9f9f9; }
    .footer { margin-top: 30px; text-align: center; font-size: 12px; color: #666; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <p>Generated on {{.Generated}}</p>
  <table>
    <thead>
      <tr>{{range .Head}}<th>{{.}}</th>{{end}}</tr>
    </thead>
    <tbody>
{{- range .Rows}}
      <tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
    </tbody>
  </table>
  <div class="footer">
    <p>This report was generated from Healthy Bytes - Your Health Companion</p>
  </div>
  <script>
    window.onload = function() { window.print(); }
  </script>
</body>
</html>
`

var pageTmpl = template.Must(template.New("report").Parse(page))

type pageData struct {
	Title     string
	Stamp     string
	Generated string
	Head      []string
	Rows      [][]string
}

func render(w io.Writer, title string, head []string, rows [][]string, now time.Time, loc *time.Location) error {
	local := now.In(loc)
	return pageTmpl.Execute(w, pageData{
		Title:     title,
		Stamp:     local.Format("2006-01-02"),
		Generated: local.Format("January 02, 2006"),
		Head:      head,
		Rows:      rows,
	})
}

// MedicationsHTML writes the printable medications report.
func MedicationsHTML(w io.Writer, meds []model.MedicationReminder, now time.Time, loc *time.Location) error {
	rows := make([][]string, 0, len(meds))
	for _, m := range meds {
		next := "Not scheduled"
		if m.NextDose != nil {
			next = m.NextDose.In(loc).Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{m.MedicationName, m.Dosage, m.Frequency, m.Time, next, m.Notes})
	}
	return render(w, "Medications Report",
		[]string{"Medication", "Dosage", "Frequency", "Time", "Next Dose", "Notes"}, rows, now, loc)
}

// AppointmentsHTML writes the printable appointments report.
func AppointmentsHTML(w io.Writer, appts []model.Appointment, now time.Time, loc *time.Location) error {
	rows := make([][]string, 0, len(appts))
	for _, a := range appts {
		where := a.Location
		if where == "" {
			where = "Not specified"
		}
		rows = append(rows, []string{a.DoctorName, a.Specialty, a.Date.In(loc).Format("01/02/2006"), a.Time, where, a.Notes})
	}
	return render(w, "Appointments Report",
		[]string{"Doctor", "Specialty", "Date", "Time", "Location", "Notes"}, rows, now, loc)
}
