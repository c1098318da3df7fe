package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dose statuses. Status is derived from the gap to the preceding dose and
// recomputed on history edits; override entries are frozen because they
// carry a user-acknowledged reason.
const (
	DoseStatusNormal   = "normal"
	DoseStatusEarly    = "early"
	DoseStatusWarning  = "warning"
	DoseStatusOverride = "override"
)

// User represents a telegram user in the system
type User struct {
	gorm.Model
	TelegramID int64 `gorm:"uniqueIndex"`
	Username   string
	FirstName  string
	LastName   string
}

// Settings holds the per-substance safety configuration. Embedded into
// Substance with a column prefix.
type Settings struct {
	DefaultDosageAmount float64
	DefaultDosageUnit   string

	// MinTimeBetweenDosesHours is ignored when UseRecommendedTiming is set;
	// the effective interval is then derived from the timing profile.
	MinTimeBetweenDosesHours float64
	UseRecommendedTiming     bool

	// MaxDailyDoses <= 0 means unset; the effective quota is then
	// floor(24 / effective interval).
	MaxDailyDoses int

	// CurrentSupply is nil when supply tracking is disabled.
	CurrentSupply *float64
	TrackSupply   bool

	EnforceDailyLimit         bool
	EnforceTimingRestrictions bool
}

// Substance is a tracked substance owned by a user.
type Substance struct {
	gorm.Model
	PublicID     string `gorm:"uniqueIndex;size:36"`
	UserID       uint   `gorm:"index"`
	Name         string
	Category     string
	Description  string
	Instructions string
	Warnings     string
	Settings     Settings `gorm:"embedded;embeddedPrefix:settings_"`

	// Doses are conventionally kept sorted newest-first when loaded.
	Doses []Dose `gorm:"constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns the creation-time public ID
func (s *Substance) BeforeCreate(tx *gorm.DB) error {
	if s.PublicID == "" {
		s.PublicID = uuid.NewString()
	}
	return nil
}

// Dose is a single recorded dose event.
type Dose struct {
	gorm.Model
	PublicID    string    `gorm:"uniqueIndex;size:36"`
	SubstanceID uint      `gorm:"index"`
	Timestamp   time.Time `gorm:"index"`
	Amount      float64
	Unit        string
	Status      string

	// OverrideReason is required whenever Status is "override".
	OverrideReason string
}

// BeforeCreate assigns the creation-time public ID
func (d *Dose) BeforeCreate(tx *gorm.DB) error {
	if d.PublicID == "" {
		d.PublicID = uuid.NewString()
	}
	return nil
}

// LastDose returns the most recent dose by timestamp, or nil when the
// substance has no history.
func (s *Substance) LastDose() *Dose {
	var last *Dose
	for i := range s.Doses {
		if last == nil || s.Doses[i].Timestamp.After(last.Timestamp) {
			last = &s.Doses[i]
		}
	}
	return last
}
