package model

import (
	"time"

	"github.com/google/uuid"
)

// Auxiliary is the auxiliary verb used to form compound tenses.
type Auxiliary string

const (
	AuxiliaryAvoir Auxiliary = "avoir"
	AuxiliaryEtre  Auxiliary = "etre"
)

// Classification groups regular verbs by conjugation family.
type Classification string

const (
	ClassificationFirst  Classification = "first"
	ClassificationSecond Classification = "second"
	ClassificationThird  Classification = "third"
)

// Verb is the root entity sentences are generated from.
type Verb struct {
	ID                 uuid.UUID       `json:"id"`
	Infinitive         string          `json:"infinitive"`
	Auxiliary          Auxiliary       `json:"auxiliary"`
	Reflexive          bool            `json:"reflexive"`
	TargetLanguageCode string          `json:"target_language_code"`
	Translation        string          `json:"translation"`
	PastParticiple     string          `json:"past_participle"`
	PresentParticiple  string          `json:"present_participle"`
	Classification     *Classification `json:"classification,omitempty"`
	Irregular          bool            `json:"is_irregular"`
	CanHaveCOD         bool            `json:"can_have_cod"`
	CanHaveCOI         bool            `json:"can_have_coi"`
	IsTest             bool            `json:"is_test"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	LastUsedAt         *time.Time      `json:"last_used_at,omitempty"`
}

// UniqueKey returns the 5-tuple that must be unique across all verbs.
func (v Verb) UniqueKey() string {
	return v.Infinitive + "|" + string(v.Auxiliary) + "|" + boolKey(v.Reflexive) + "|" + v.TargetLanguageCode + "|" + v.Translation
}

func boolKey(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
