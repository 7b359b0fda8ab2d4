package assets

import "errors"

var (
	ErrStyleNotFound         = errors.New("style not found")
	ErrTemplateSetNotFound   = errors.New("template not found")
	ErrIncompleteTemplateSet = errors.New("template missing resume.md")
	ErrInvalidAssetName      = errors.New("invalid asset name")
	ErrInvalidBasePath       = errors.New("invalid asset directory")
	ErrAssetRead             = errors.New("failed to read asset")
	ErrPathTraversal         = errors.New("asset path escapes its directory")
)
