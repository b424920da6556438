package storage

import (
	"encoding/json"
	"reflect"

	"github.com/pkg/errors"
)

// typeName names the type of target for error messages, e.g. "*Pending".
func typeName(target interface{}) string {
	if target == nil {
		return "nil"
	}

	t := reflect.TypeOf(target)
	if t.Kind() == reflect.Ptr {
		return "*" + t.Elem().Name()
	}

	return t.Name()
}

func encode(data interface{}) ([]byte, error) {
	rawBytes, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to convert %s to json", typeName(data))
	}

	return rawBytes, nil
}

func decode(rawData []byte, target interface{}) error {
	err := json.Unmarshal(rawData, target)
	if err != nil {
		return errors.Wrapf(err, "failed to convert %q to %s", string(rawData), typeName(target))
	}

	return nil
}
