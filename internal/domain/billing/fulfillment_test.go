package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/core/apperror"
	"facturo/internal/domain/documents"
)

func TestRequestFulfillment_Clamps(t *testing.T) {
	line := &documents.Line{Quantity: dec("10"), Fulfilled: dec("7")}

	assert.True(t, dec("3").Equal(RequestFulfillment(line, dec("5"))),
		"request above remaining clamps to remaining")
	assert.True(t, dec("2").Equal(RequestFulfillment(line, dec("2"))))
	assert.True(t, RequestFulfillment(line, dec("-1")).IsZero(),
		"silly requests clamp to zero")
	assert.True(t, dec("3").Equal(line.Remaining()), "request never mutates")
	assert.True(t, dec("7").Equal(line.Fulfilled))
}

func TestRequestFulfillment_NegativeLine(t *testing.T) {
	line := &documents.Line{Quantity: dec("-10"), Fulfilled: dec("-4")}

	assert.True(t, dec("-6").Equal(RequestFulfillment(line, dec("-9"))),
		"clamps toward the negative remaining")
	assert.True(t, dec("-2").Equal(RequestFulfillment(line, dec("-2"))))
	assert.True(t, RequestFulfillment(line, dec("3")).IsZero())
}

func TestCommitFulfillment_Accumulates(t *testing.T) {
	line := &documents.Line{Quantity: dec("10")}

	require.NoError(t, CommitFulfillment(line, dec("4")))
	require.NoError(t, CommitFulfillment(line, dec("6")))

	assert.True(t, dec("10").Equal(line.Fulfilled))
	assert.True(t, line.IsFullyFulfilled())
}

func TestCommitFulfillment_NeverClamps(t *testing.T) {
	line := &documents.Line{Quantity: dec("10"), Fulfilled: dec("8")}

	err := CommitFulfillment(line, dec("5"))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeOverFulfillment))
	assert.True(t, dec("8").Equal(line.Fulfilled), "failed commit leaves state intact")
}

func TestCommitFulfillment_RejectsNegativeTotal(t *testing.T) {
	line := &documents.Line{Quantity: dec("10"), Fulfilled: dec("2")}

	err := CommitFulfillment(line, dec("-3"))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeOverFulfillment))
}

func TestCommitFulfillment_NegativeLine(t *testing.T) {
	line := &documents.Line{Quantity: dec("-5")}

	require.NoError(t, CommitFulfillment(line, dec("-5")))
	assert.True(t, line.IsFullyFulfilled())

	err := CommitFulfillment(line, dec("-1"))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeOverFulfillment))
}

func TestFulfillment_RequestThenCommitRace(t *testing.T) {
	// Two transformations read remaining=3, each requests 3. The first
	// commit wins; the second must fail instead of double-fulfilling.
	line := &documents.Line{Quantity: dec("10"), Fulfilled: dec("7")}

	first := RequestFulfillment(line, dec("3"))
	second := RequestFulfillment(line, dec("3"))

	require.NoError(t, CommitFulfillment(line, first))

	err := CommitFulfillment(line, second)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeOverFulfillment))
}

func TestDocument_IsFullyFulfilled(t *testing.T) {
	doc := &documents.Document{
		Lines: []documents.Line{
			{Description: "note"},
			{Quantity: dec("5"), Price: dec("10"), Fulfilled: dec("5")},
			{Quantity: dec("2"), Price: dec("10"), Fulfilled: dec("1")},
		},
	}
	assert.False(t, doc.IsFullyFulfilled())

	doc.Lines[2].Fulfilled = dec("2")
	assert.True(t, doc.IsFullyFulfilled(), "informational lines never block completion")

	empty := &documents.Document{Lines: []documents.Line{{Description: "note"}}}
	assert.False(t, empty.IsFullyFulfilled(), "a document without priced lines is never complete")
}
