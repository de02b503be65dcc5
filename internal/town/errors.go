package town

import "errors"

var (
	ErrMalformedArea        = errors.New("malformed interactable area")
	ErrMissingObjectLayer   = errors.New("map has no object layer")
	ErrDuplicateAreaID      = errors.New("duplicate interactable id")
	ErrOverlappingAreas     = errors.New("interactable areas overlap")
	ErrInteractableNotFound = errors.New("interactable not found")
	ErrWrongAreaKind        = errors.New("model does not match area kind")
	ErrUnknownAreaKind      = errors.New("unknown area kind")
	ErrTownFull             = errors.New("town is full")
	ErrTownNotFound         = errors.New("town not found")
	ErrNotOccupant          = errors.New("player is not in that area")
	ErrNoGameInProgress     = errors.New("no game in progress")
)
