package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueString(t *testing.T) {
	assert.Equal(t, "42", NumberValue(42).String())
	assert.Equal(t, "3.5", NumberValue(3.5).String())
	assert.Equal(t, "hello", TextValue("hello").String())
	assert.Equal(t, "#REF!", NewErrorValue(ErrorRef).String())
	assert.Equal(t, "#VALUE!", NewErrorValue(ErrorValue).String())
	assert.Equal(t, "#ARITH!", NewErrorValue(ErrorArithmetic).String())
}
