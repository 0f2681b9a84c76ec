package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/harentsoaR/smart-health-api/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrReferenced means other rows still point at the record.
	ErrReferenced = errors.New("record is referenced")
)

// Page is a 1-based page number and a page size.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// end returns the first instant after the range, for timestamp columns.
func (r DateRange) end() time.Time {
	return r.To.AddDate(0, 0, 1)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrReferenced
	}
	return err
}

func paginate(p Page) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Size <= 0 {
			return db
		}
		return db.Offset(p.Offset()).Limit(p.Size)
	}
}

// weeklyOrder sorts availability windows Monday first, then by start time.
var weeklyOrder = func() string {
	var b strings.Builder
	b.WriteString("CASE day_of_week")
	for i, day := range models.Weekdays {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", day, i)
	}
	b.WriteString(" END, start_time")
	return b.String()
}()

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
