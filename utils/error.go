package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorSessionNotFound covers unknown, already-consumed and expired
// import tokens alike; callers cannot tell the three apart.
var ErrorSessionNotFound = errors.New("import session not found")

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
