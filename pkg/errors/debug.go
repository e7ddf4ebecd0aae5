package errors

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	MongoCode    int32  `json:"mongo_code,omitempty"`
	MongoMessage string `json:"mongo_message,omitempty"`
	MongoLabels  string `json:"mongo_labels,omitempty"`
	DuplicateKey bool   `json:"duplicate_key,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	d.DuplicateKey = mongo.IsDuplicateKeyError(err)

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		d.MongoCode = cmdErr.Code
		d.MongoMessage = cmdErr.Message
		d.MongoLabels = fmt.Sprintf("%v", cmdErr.Labels)
		return d
	}

	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		if len(writeErr.WriteErrors) > 0 {
			d.MongoCode = int32(writeErr.WriteErrors[0].Code)
			d.MongoMessage = writeErr.WriteErrors[0].Message
		}
		d.MongoLabels = fmt.Sprintf("%v", writeErr.Labels)
		return d
	}

	return d
}

// IsDuplicateKey reports whether err is a unique index violation (E11000).
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
