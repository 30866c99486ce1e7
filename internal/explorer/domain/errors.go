package domain

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrLayerNotFound   = errors.New("layer not found")
	ErrNoDiagram       = errors.New("no diagram at this level")
	ErrMediaNotFound   = errors.New("media not found")
)
