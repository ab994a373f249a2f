package model

import "errors"

// Extraction errors. Each one is scoped to a single capture file.
var (
	ErrParse            = errors.New("parse error")
	ErrIdentityNotFound = errors.New("identity not found")
	ErrOwnerNotFound    = errors.New("owner not found")
	ErrNoFollowings     = errors.New("no followings found")
	ErrInvalidUsername  = errors.New("invalid username")
)

// Aggregation and export errors. These abort the whole run.
var (
	ErrNoInputDocuments  = errors.New("no input documents")
	ErrMalformedDocument = errors.New("malformed document")
	ErrEmptyNodeSet      = errors.New("empty node set")
	ErrEmptyEdgeSet      = errors.New("empty edge set")
)
