package types

import "slices"

type KeyStatus string

const (
	KeyStatusActive   KeyStatus = "active"
	KeyStatusDisabled KeyStatus = "disabled"
	KeyStatusExpired  KeyStatus = "expired"
)

var keyStatusLabels = map[KeyStatus]string{
	KeyStatusActive:   "Active",
	KeyStatusDisabled: "Disabled",
	KeyStatusExpired:  "Expired",
}

func (s KeyStatus) Valid() bool {
	_, ok := keyStatusLabels[s]
	return ok
}

// Label returns the human readable form, "Unknown" for unrecognised values.
func (s KeyStatus) Label() string {
	if l, ok := keyStatusLabels[s]; ok {
		return l
	}
	return "Unknown"
}

type ActivationStatus string

const (
	ActivationStatusActive      ActivationStatus = "active"
	ActivationStatusDeactivated ActivationStatus = "deactivated"
	ActivationStatusDisabled    ActivationStatus = "disabled"
)

func (s ActivationStatus) Valid() bool {
	return s == ActivationStatusActive || s == ActivationStatusDeactivated || s == ActivationStatusDisabled
}

// Track selects which release types an activation is offered.
type Track string

const (
	TrackStable     Track = "stable"
	TrackPreRelease Track = "pre-release"
)

func (t Track) Valid() bool {
	return t == TrackStable || t == TrackPreRelease
}

// ReleaseTypes lists the release types delivered on this track.
func (t Track) ReleaseTypes() []ReleaseType {
	types := []ReleaseType{ReleaseTypeMajor, ReleaseTypeMinor, ReleaseTypeSecurity}
	if t == TrackPreRelease {
		types = append(types, ReleaseTypePreRelease)
	}
	return types
}

type ReleaseType string

const (
	ReleaseTypeMajor      ReleaseType = "major"
	ReleaseTypeMinor      ReleaseType = "minor"
	ReleaseTypeSecurity   ReleaseType = "security"
	ReleaseTypePreRelease ReleaseType = "pre-release"
	ReleaseTypeRestricted ReleaseType = "restricted"
)

var releaseTypes = []ReleaseType{
	ReleaseTypeMajor,
	ReleaseTypeMinor,
	ReleaseTypeSecurity,
	ReleaseTypePreRelease,
	ReleaseTypeRestricted,
}

func (t ReleaseType) Valid() bool {
	return slices.Contains(releaseTypes, t)
}

type ReleaseStatus string

const (
	ReleaseStatusDraft    ReleaseStatus = "draft"
	ReleaseStatusActive   ReleaseStatus = "active"
	ReleaseStatusPaused   ReleaseStatus = "paused"
	ReleaseStatusArchived ReleaseStatus = "archived"
)

func (s ReleaseStatus) Valid() bool {
	switch s {
	case ReleaseStatusDraft, ReleaseStatusActive, ReleaseStatusPaused, ReleaseStatusArchived:
		return true
	}
	return false
}

// Editable reports whether version, type, changelog and download may change.
func (s ReleaseStatus) Editable() bool {
	return s == ReleaseStatusDraft || s == ReleaseStatusActive
}

type KeyChangeReason string

const (
	KeyChangeReasonCreated  KeyChangeReason = "created"
	KeyChangeReasonStatus   KeyChangeReason = "status"
	KeyChangeReasonExpires  KeyChangeReason = "expires"
	KeyChangeReasonMax      KeyChangeReason = "max"
	KeyChangeReasonExtended KeyChangeReason = "extended"
	KeyChangeReasonRenewed  KeyChangeReason = "renewed"
	KeyChangeReasonExpired  KeyChangeReason = "expired"
)
