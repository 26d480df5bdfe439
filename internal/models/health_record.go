package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecordType represents the variant of a health record
type RecordType string

const (
	RecordTypeBloodPressure RecordType = "blood_pressure"
	RecordTypeSugarLevel    RecordType = "sugar_level"
	RecordTypeBabyMovement  RecordType = "baby_movement"
	RecordTypeWeeklyUpdate  RecordType = "weekly_update"
)

// RecordTypes lists the closed set of variants.
var RecordTypes = []RecordType{
	RecordTypeBloodPressure,
	RecordTypeSugarLevel,
	RecordTypeBabyMovement,
	RecordTypeWeeklyUpdate,
}

// Valid reports whether t is one of the known variants.
func (t RecordType) Valid() bool {
	for _, known := range RecordTypes {
		if t == known {
			return true
		}
	}
	return false
}

// SugarTestType distinguishes glucose test conditions.
type SugarTestType string

const (
	SugarTestFasting  SugarTestType = "fasting"
	SugarTestRandom   SugarTestType = "random"
	SugarTestPostMeal SugarTestType = "post_meal"
)

// Payload is the variant-specific body of a HealthRecord. The set of
// implementations is closed to this package.
type Payload interface {
	RecordType() RecordType
	isPayload()
}

// BloodPressure is the blood_pressure payload.
type BloodPressure struct {
	Systolic  int    `json:"systolic" validate:"required,gt=0,lte=300"`
	Diastolic int    `json:"diastolic" validate:"required,gt=0,lte=300"`
	HeartRate int    `json:"heartRate" validate:"required,gt=0,lte=300"`
	Notes     string `json:"notes"`
}

// SugarLevel is the sugar_level payload.
type SugarLevel struct {
	Level    float64       `json:"level" validate:"required,gt=0"`
	TestType SugarTestType `json:"testType" validate:"required,oneof=fasting random post_meal"`
	Notes    string        `json:"notes"`
}

// BabyMovement is the baby_movement payload. Duration is in minutes.
type BabyMovement struct {
	Count    int    `json:"count" validate:"gte=0"`
	Duration int    `json:"duration" validate:"required,gt=0"`
	Notes    string `json:"notes"`
}

// WeeklyUpdate is the weekly_update payload.
type WeeklyUpdate struct {
	Weight   float64  `json:"weight" validate:"required,gt=0"`
	Symptoms []string `json:"symptoms" validate:"dive,required"`
	Mood     int      `json:"mood" validate:"required,min=1,max=10"`
	Notes    string   `json:"notes"`
}

func (BloodPressure) RecordType() RecordType { return RecordTypeBloodPressure }
func (SugarLevel) RecordType() RecordType    { return RecordTypeSugarLevel }
func (BabyMovement) RecordType() RecordType  { return RecordTypeBabyMovement }
func (WeeklyUpdate) RecordType() RecordType  { return RecordTypeWeeklyUpdate }

func (BloodPressure) isPayload() {}
func (SugarLevel) isPayload()    {}
func (BabyMovement) isPayload()  {}
func (WeeklyUpdate) isPayload()  {}

// HealthRecord represents a single timestamped observation of one variant.
type HealthRecord struct {
	BaseModel
	PatientID string         `gorm:"size:36;not null;uniqueIndex:idx_patient_sequence,priority:1"`
	Sequence  int64          `gorm:"not null;uniqueIndex:idx_patient_sequence,priority:2"`
	Date      time.Time      `gorm:"not null;index"`
	Type      RecordType     `gorm:"size:32;not null;index"`
	Data      datatypes.JSON `gorm:"not null"`
	Payload   Payload        `gorm:"-"`
}

// BeforeSave encodes the payload into the JSON column.
func (r *HealthRecord) BeforeSave(tx *gorm.DB) error {
	if r.Payload == nil {
		return fmt.Errorf("health record %s has no payload", r.ID)
	}
	if r.Payload.RecordType() != r.Type {
		return fmt.Errorf("health record %s: payload %s does not match type %s", r.ID, r.Payload.RecordType(), r.Type)
	}
	raw, err := json.Marshal(r.Payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", r.Type, err)
	}
	r.Data = datatypes.JSON(raw)
	return nil
}

// AfterFind decodes the JSON column back into a typed payload.
func (r *HealthRecord) AfterFind(tx *gorm.DB) error {
	p, err := DecodePayload(r.Type, json.RawMessage(r.Data))
	if err != nil {
		return fmt.Errorf("health record %s: %w", r.ID, err)
	}
	r.Payload = p
	return nil
}

// BloodPressure returns the payload when the record is a blood_pressure record.
func (r HealthRecord) BloodPressure() (BloodPressure, bool) {
	bp, ok := r.Payload.(BloodPressure)
	return bp, ok
}

type healthRecordJSON struct {
	ID        string          `json:"id"`
	PatientID string          `json:"patientId"`
	Date      time.Time       `json:"date"`
	Type      RecordType      `json:"type"`
	Data      json.RawMessage `json:"data"`
}

// MarshalJSON renders the record with its payload under "data".
func (r HealthRecord) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(healthRecordJSON{
		ID:        r.ID,
		PatientID: r.PatientID,
		Date:      r.Date,
		Type:      r.Type,
		Data:      data,
	})
}

// UnmarshalJSON decodes "data" according to "type".
func (r *HealthRecord) UnmarshalJSON(b []byte) error {
	var wire healthRecordJSON
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	p, err := DecodePayload(wire.Type, wire.Data)
	if err != nil {
		return err
	}
	*r = HealthRecord{
		BaseModel: BaseModel{ID: wire.ID},
		PatientID: wire.PatientID,
		Date:      wire.Date,
		Type:      wire.Type,
		Payload:   p,
	}
	return nil
}

// DecodePayload decodes raw JSON into the concrete payload for t. Fields that
// belong to no field of that variant are rejected.
func DecodePayload(t RecordType, raw json.RawMessage) (Payload, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("missing %s data", t)
	}
	var p Payload
	var err error
	switch t {
	case RecordTypeBloodPressure:
		var bp BloodPressure
		err = strictUnmarshal(raw, &bp)
		p = bp
	case RecordTypeSugarLevel:
		var sl SugarLevel
		err = strictUnmarshal(raw, &sl)
		p = sl
	case RecordTypeBabyMovement:
		var bm BabyMovement
		err = strictUnmarshal(raw, &bm)
		p = bm
	case RecordTypeWeeklyUpdate:
		var wu WeeklyUpdate
		err = strictUnmarshal(raw, &wu)
		p = wu
	default:
		return nil, fmt.Errorf("unknown record type %q", t)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func strictUnmarshal(raw []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode payload: unexpected data after the %T object", v)
	}
	return nil
}
