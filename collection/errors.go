package collection

import "errors"

var ErrInvalidName = errors.New("invalid name")
var ErrCollectionNotFound = errors.New("collection not found")
var ErrRecordNotFound = errors.New("record not found")
var ErrUploadMetadataNotFound = errors.New("upload metadata not found")
var ErrUploadNotFound = errors.New("upload not found")
