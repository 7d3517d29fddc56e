package dtos

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexNumber accepts a JSON number or a numeric string. Admin forms post
// prices such as "£1,250" as text; currency signs and thousands separators
// are ignored and an empty string reads as 0.
type FlexNumber float64

func (n *FlexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.NewReplacer("£", "", ",", "", " ", "").Replace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = FlexNumber(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = FlexNumber(f)
	return nil
}

func (n *FlexNumber) Float() *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}

func (n *FlexNumber) Int() *int {
	if n == nil {
		return nil
	}
	i := int(*n)
	return &i
}
