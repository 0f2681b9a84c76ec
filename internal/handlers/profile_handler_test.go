package handlers

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/repository"
)

func TestPatientProfile(t *testing.T) {
	f := newFixture(t)
	f.h.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	tok := token(t, patientUser, models.RolePatient)

	w := f.do(t, http.MethodGet, "/api/patients/profile/", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p PatientResponse
	decode(t, w, &p)
	assert.Equal(t, patientID, p.ID)
	assert.Nil(t, p.DateOfBirth)

	w = f.do(t, http.MethodPatch, "/api/patients/profile/", tok, gin.H{
		"age": 34, "gender": "female", "date_of_birth": "1990-02-01", "blood_group": "O+",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &p)
	require.NotNil(t, p.Age)
	assert.Equal(t, 34, *p.Age)
	assert.Equal(t, models.GenderFemale, p.Gender)
	require.NotNil(t, p.DateOfBirth)
	assert.Equal(t, "1990-02-01", *p.DateOfBirth)

	w = f.do(t, http.MethodPatch, "/api/patients/profile/", tok, gin.H{"allergies": "penicillin"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &p)
	assert.Equal(t, "penicillin", p.Allergies)
	assert.Equal(t, "O+", p.BloodGroup, "omitted fields are kept")

	w = f.do(t, http.MethodGet, "/api/patients/profile/", token(t, doctorUser, models.RoleDoctor), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPatientProfileValidation(t *testing.T) {
	f := newFixture(t)
	f.h.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	tok := token(t, patientUser, models.RolePatient)

	cases := map[string]struct {
		body  gin.H
		field string
	}{
		"negative age":     {gin.H{"age": -1}, "age"},
		"age above 150":    {gin.H{"age": 151}, "age"},
		"unknown gender":   {gin.H{"gender": "robot"}, "gender"},
		"malformed dob":    {gin.H{"date_of_birth": "15/03/1990"}, "date_of_birth"},
		"future dob":       {gin.H{"date_of_birth": "2024-03-16"}, "date_of_birth"},
		"long blood group": {gin.H{"blood_group": "AB+pos"}, "blood_group"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := f.do(t, http.MethodPatch, "/api/patients/profile/", tok, tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			var eb errorBody
			decode(t, w, &eb)
			assert.Contains(t, eb.Details, tc.field)
		})
	}

	for _, age := range []int{0, 150} {
		w := f.do(t, http.MethodPatch, "/api/patients/profile/", tok, gin.H{"age": age})
		assert.Equal(t, http.StatusOK, w.Code, "age %d is accepted", age)
	}
	w := f.do(t, http.MethodPatch, "/api/patients/profile/", tok, gin.H{"date_of_birth": "2024-03-15"})
	assert.Equal(t, http.StatusOK, w.Code, "today is not in the future")
}

func TestUpdateDoctorProfile(t *testing.T) {
	f := newFixture(t)
	f.h.cache = newMemoryCache()
	require.NoError(t, f.h.cache.Set(context.Background(), doctorListKey, cachedDoctorPage{Count: 1}, time.Minute))
	tok := token(t, doctorUser, models.RoleDoctor)

	w := f.do(t, http.MethodPatch, "/api/doctors/profile/", tok, gin.H{
		"specialization": "Cardiology", "years_of_experience": 12, "consultation_fee": 45.5,
		"is_verified": false, "rating": 5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var d DoctorResponse
	decode(t, w, &d)
	assert.Equal(t, "Cardiology", d.Specialization)
	assert.Equal(t, 12, d.YearsOfExperience)
	assert.InDelta(t, 45.5, d.ConsultationFee, 0.001)
	assert.True(t, d.IsVerified, "verification is read-only here")
	assert.Zero(t, d.Rating, "rating is read-only here")

	var cached cachedDoctorPage
	assert.Error(t, f.h.cache.Get(context.Background(), doctorListKey, &cached), "profile edits drop the cached directory")

	w = f.do(t, http.MethodGet, "/api/doctors/profile/", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &d)
	assert.Equal(t, "Cardiology", d.Specialization)

	for name, body := range map[string]gin.H{
		"negative fee":        {"consultation_fee": -1},
		"too much experience": {"years_of_experience": 81},
		"long phone":          {"phone_number": "+261 34 12 345 678 90"},
		"negative experience": {"years_of_experience": -2},
	} {
		t.Run(name, func(t *testing.T) {
			w := f.do(t, http.MethodPatch, "/api/doctors/profile/", tok, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	w = f.do(t, http.MethodPatch, "/api/doctors/profile/", token(t, patientUser, models.RolePatient), gin.H{"bio": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestVerifyDoctor(t *testing.T) {
	f := newFixture(t)
	f.doctors.profiles[9] = &models.DoctorProfile{ID: 90, UserID: 9}
	admin := token(t, adminUser, models.RoleAdmin)

	w := f.do(t, http.MethodGet, "/api/doctors/90/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "unverified doctors are hidden")

	w = f.do(t, http.MethodPatch, "/api/doctors/90/verify/", token(t, doctorUser, models.RoleDoctor), gin.H{"is_verified": true})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPatch, "/api/doctors/90/verify/", admin, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "is_verified is required")

	w = f.do(t, http.MethodPatch, "/api/doctors/90/verify/", admin, gin.H{"is_verified": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var d DoctorResponse
	decode(t, w, &d)
	assert.True(t, d.IsVerified)

	w = f.do(t, http.MethodGet, "/api/doctors/90/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPatch, "/api/doctors/90/verify/", admin, gin.H{"is_verified": false})
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodGet, "/api/doctors/90/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPatch, "/api/doctors/999/verify/", admin, gin.H{"is_verified": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDoctorDirectoryCachesDefaultPageOnly(t *testing.T) {
	f := newFixture(t)
	f.h.cache = newMemoryCache()
	calls := 0
	f.doctors.ListVerifiedFunc = func(_ context.Context, _ repository.DoctorFilter, p repository.Page) ([]models.DoctorProfile, int64, error) {
		calls++
		return []models.DoctorProfile{{ID: doctorID, IsVerified: true, Specialization: "Dermatology"}}, 25, nil
	}

	for i := 0; i < 2; i++ {
		w := f.do(t, http.MethodGet, "/api/doctors/?page_size=5", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 2, calls, "non-default page sizes are not cached")

	w := f.do(t, http.MethodGet, "/api/doctors/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodGet, "/api/doctors/?page_size=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, calls, "an explicit default size shares the cached page")

	w = f.do(t, http.MethodPatch, "/api/doctors/profile/", token(t, doctorUser, models.RoleDoctor), gin.H{"bio": "updated"})
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodGet, "/api/doctors/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, calls)
}

func TestDoctorDirectoryLinksFollowEachRequest(t *testing.T) {
	f := newFixture(t)
	f.h.cache = newMemoryCache()
	f.doctors.ListVerifiedFunc = func(context.Context, repository.DoctorFilter, repository.Page) ([]models.DoctorProfile, int64, error) {
		return []models.DoctorProfile{{ID: doctorID, IsVerified: true}}, 25, nil
	}

	w := f.do(t, http.MethodGet, "http://evil.example/api/doctors/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page PageResponse
	decode(t, w, &page)
	require.NotNil(t, page.Next)

	w = f.do(t, http.MethodGet, "http://clinic.example/api/doctors/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = PageResponse{}
	decode(t, w, &page)
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://clinic.example/api/doctors/?page=2", *page.Next)
	assert.NotContains(t, w.Body.String(), "evil.example")
}

func TestPageLinksUseConfiguredBaseURL(t *testing.T) {
	f := newFixture(t)
	base, err := url.Parse("https://api.clinic.test/v2/")
	require.NoError(t, err)
	f.h.baseURL = base
	f.doctors.ListVerifiedFunc = func(context.Context, repository.DoctorFilter, repository.Page) ([]models.DoctorProfile, int64, error) {
		return nil, 25, nil
	}

	w := f.do(t, http.MethodGet, "http://evil.example/api/doctors/?page=2&location=Tana", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page PageResponse
	decode(t, w, &page)
	require.NotNil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "https://api.clinic.test/v2/api/doctors/?location=Tana&page=3", *page.Next)
	assert.Equal(t, "https://api.clinic.test/v2/api/doctors/?location=Tana", *page.Previous)
}
