package util

import (
	"encoding/json"
	"fmt"
)

// PrettyPrint writes obj to stdout as indented JSON. Nothing is printed if
// serialization fails
func PrettyPrint(obj interface{}) error {
	pretty, err := json.MarshalIndent(obj, "", "    ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}
