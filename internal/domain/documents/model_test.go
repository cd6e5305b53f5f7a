package documents

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
)

func TestDocType_TransformTargets(t *testing.T) {
	cases := []struct {
		source  DocType
		target  DocType
		allowed bool
	}{
		{TypeEstimate, TypeOrder, true},
		{TypeEstimate, TypeDeliveryNote, true},
		{TypeEstimate, TypeInvoice, true},
		{TypeOrder, TypeDeliveryNote, true},
		{TypeOrder, TypeInvoice, true},
		{TypeOrder, TypeEstimate, false},
		{TypeDeliveryNote, TypeInvoice, true},
		{TypeDeliveryNote, TypeOrder, false},
		{TypeInvoice, TypeEstimate, false},
		{TypeInvoice, TypeOrder, false},
		{TypeInvoice, TypeDeliveryNote, false},
		{TypeInvoice, TypeInvoice, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.source.CanTransformTo(tc.target),
			"%s -> %s", tc.source, tc.target)
	}
}

func TestDocType_IsValid(t *testing.T) {
	assert.True(t, TypeEstimate.IsValid())
	assert.True(t, TypeInvoice.IsValid())
	assert.False(t, DocType("memo").IsValid())
	assert.False(t, DocType("").IsValid())
}

func TestDocType_NumberPrefix(t *testing.T) {
	assert.Equal(t, "EST", TypeEstimate.NumberPrefix())
	assert.Equal(t, "ORD", TypeOrder.NumberPrefix())
	assert.Equal(t, "DN", TypeDeliveryNote.NumberPrefix())
	assert.Equal(t, "INV", TypeInvoice.NumberPrefix())
}

func TestDocument_Validate(t *testing.T) {
	doc := New(TypeOrder, id.New(), id.New(), id.New(), SubjectCustomer)
	require.NoError(t, doc.Validate(context.Background()))

	bad := New(TypeOrder, id.New(), id.New(), id.New(), SubjectType("partner"))
	err := bad.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	discounted := New(TypeOrder, id.New(), id.New(), id.New(), SubjectCustomer)
	discounted.Discount1Pct = decimal.NewFromInt(120)
	err = discounted.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestDocument_ValidateReportsLineNumber(t *testing.T) {
	doc := New(TypeOrder, id.New(), id.New(), id.New(), SubjectCustomer)
	doc.AddLine("ok", decimal.NewFromInt(1), decimal.NewFromInt(10))
	bad := doc.AddLine("bad", decimal.NewFromInt(1), decimal.NewFromInt(10))
	bad.Discount1Pct = decimal.NewFromInt(-5)

	err := doc.Validate(context.Background())
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidLineInput, appErr.Code)
	assert.Equal(t, 2, appErr.Details["lineNo"])
}

func TestLine_Informational(t *testing.T) {
	assert.True(t, (&Line{Description: "----------"}).IsInformational())
	assert.False(t, (&Line{Quantity: decimal.NewFromInt(1)}).IsInformational())
	assert.False(t, (&Line{Price: decimal.NewFromInt(5)}).IsInformational())
}

func TestLine_Remaining(t *testing.T) {
	l := &Line{Quantity: decimal.NewFromInt(10), Fulfilled: decimal.NewFromInt(3)}
	assert.True(t, decimal.NewFromInt(7).Equal(l.Remaining()))
	assert.False(t, l.IsFullyFulfilled())

	neg := &Line{Quantity: decimal.NewFromInt(-10), Fulfilled: decimal.NewFromInt(-10)}
	assert.True(t, neg.Remaining().IsZero())
	assert.True(t, neg.IsFullyFulfilled())
}

func TestDocument_CanModify(t *testing.T) {
	doc := New(TypeInvoice, id.New(), id.New(), id.New(), SubjectCustomer)
	require.NoError(t, doc.CanModify())

	doc.Editable = false
	err := doc.CanModify()
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDocumentNotEditable))
}

func TestDocument_AddLineNumbersSequentially(t *testing.T) {
	doc := New(TypeEstimate, id.New(), id.New(), id.New(), SubjectCustomer)
	a := doc.AddLine("a", decimal.NewFromInt(1), decimal.NewFromInt(1))
	b := doc.AddLine("b", decimal.NewFromInt(2), decimal.NewFromInt(2))

	assert.Equal(t, 1, a.LineNo)
	assert.Equal(t, 2, b.LineNo)
	assert.False(t, id.IsNil(a.LineID))
	assert.NotEqual(t, a.LineID, b.LineID)
}

func TestDocument_IsRectification(t *testing.T) {
	doc := New(TypeInvoice, id.New(), id.New(), id.New(), SubjectCustomer)
	assert.False(t, doc.IsRectification())

	srcID := id.New()
	doc.RectifiedDocID = &srcID
	assert.True(t, doc.IsRectification())
}
