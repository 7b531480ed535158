package models

import gonanoid "github.com/matoous/go-nanoid/v2"

// assignID fills an empty primary key with a nanoid before insert.
func assignID(id *string) error {
	if *id != "" {
		return nil
	}
	generated, err := gonanoid.New()
	if err != nil {
		return err
	}
	*id = generated
	return nil
}

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Directory{},
		&Workbook{},
		&Card{},
		&StudySession{},
		&StudyRecord{},
	}
}
