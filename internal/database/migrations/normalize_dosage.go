package migrations

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Early builds stored the default dosage as a single free-text column
// ("400 mg", "1 tablet"). The business logic expects the structured
// amount/unit pair, so legacy rows are upgraded here at the storage
// boundary instead of branching on shape throughout the code.
func init() {
	Register("20240115_normalize_default_dosage", upNormalizeDefaultDosage, nil)
}

type legacySubstance struct {
	ID                    uint
	SettingsDefaultDosage string
}

func (legacySubstance) TableName() string { return "substances" }

func upNormalizeDefaultDosage(db *gorm.DB) error {
	m := db.Migrator()
	if !m.HasTable(&legacySubstance{}) || !m.HasColumn(&legacySubstance{}, "settings_default_dosage") {
		return nil
	}

	var rows []legacySubstance
	if err := db.Find(&rows).Error; err != nil {
		return err
	}

	for _, row := range rows {
		amount, unit := parseLegacyDosage(row.SettingsDefaultDosage)
		err := db.Table("substances").Where("id = ?", row.ID).Updates(map[string]interface{}{
			"settings_default_dosage_amount": amount,
			"settings_default_dosage_unit":   unit,
		}).Error
		if err != nil {
			return err
		}
	}

	return m.DropColumn(&legacySubstance{}, "settings_default_dosage")
}

// parseLegacyDosage splits "400 mg" into (400, "mg"). Anything that does not
// lead with a number keeps amount zero and the whole text as the unit.
func parseLegacyDosage(s string) (float64, string) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return 0, ""
	}
	amount, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, strings.Join(fields, " ")
	}
	return amount, strings.Join(fields[1:], " ")
}
