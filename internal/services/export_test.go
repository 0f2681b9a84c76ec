package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/harentsoaR/smart-health-api/internal/models"
)

var sampleDataset = Dataset{
	Title:   "Appointments report",
	Headers: []string{"id", "patient", "status"},
	Rows: [][]string{
		{"1", "pat, junior", "pending"},
		{"2", "ana", "completed"},
	},
}

func TestExportCSV(t *testing.T) {
	out, err := Export(models.FormatCSV, sampleDataset)
	require.NoError(t, err)
	assert.Equal(t, "id,patient,status\n1,\"pat, junior\",pending\n2,ana,completed\n", string(out))
}

func TestExportXLSX(t *testing.T) {
	out, err := Export(models.FormatXLSX, sampleDataset)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "patient", "status"}, rows[0])
	assert.Equal(t, "completed", rows[2][2])
}

func TestExportPDF(t *testing.T) {
	out, err := Export(models.FormatPDF, sampleDataset)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := Export("docx", sampleDataset)
	assert.Error(t, err)
}

func TestRenderPrescriptionPDF(t *testing.T) {
	d := &models.Diagnosis{
		ID:        1,
		Summary:   "Seasonal flu",
		Notes:     "Rest and hydration",
		CreatedAt: time.Now(),
		Appointment: models.Appointment{
			Date:    datatypes.Date(time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)),
			Time:    datatypes.NewTime(10, 0, 0, 0),
			Patient: models.PatientProfile{User: models.User{Username: "pat"}},
			Doctor:  models.DoctorProfile{User: models.User{Username: "doc"}, Specialization: "General"},
		},
		Prescriptions: []models.Prescription{
			{MedicineName: "Paracetamol", Dosage: "500mg", Duration: "5 days"},
		},
	}
	out, err := RenderPrescriptionPDF(d)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestLocalStorage(t *testing.T) {
	s := NewLocalStorage(t.TempDir())

	name, err := s.Save("reports/a.csv", []byte("x,y"))
	require.NoError(t, err)
	assert.Equal(t, "reports/a.csv", name)

	data, err := s.Read(name)
	require.NoError(t, err)
	assert.Equal(t, "x,y", string(data))

	name, err = s.Save("../../escape.txt", []byte("nope"))
	require.NoError(t, err)
	assert.Equal(t, "escape.txt", name, "names are confined to the storage root")
}
