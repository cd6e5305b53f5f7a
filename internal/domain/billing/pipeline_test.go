package billing

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/core/money"
	"facturo/internal/core/tenant"
	"facturo/internal/domain"
	"facturo/internal/domain/documents"
	"facturo/pkg/numerator"
)

// --- in-memory fakes ---

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type seqRow struct{ val int64 }

func (r seqRow) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.val
	return nil
}

type seqQuerier struct {
	mu       sync.Mutex
	counters map[string]int64
}

func (q *seqQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	key := args[0].(string)
	q.counters[key]++
	return seqRow{val: q.counters[key]}
}

type statusUpdate struct {
	docID    id.ID
	statusID id.ID
	editable bool
}

type fakeDocRepo struct {
	docs           map[id.ID]*documents.Document
	created        []*documents.Document
	savedLines     map[id.ID][]documents.Line
	savedBreakdown map[id.ID][]documents.BreakdownRow
	statusUpdates  []statusUpdate
	lineWrites     int
}

func newFakeDocRepo(docs ...*documents.Document) *fakeDocRepo {
	r := &fakeDocRepo{
		docs:           make(map[id.ID]*documents.Document),
		savedLines:     make(map[id.ID][]documents.Line),
		savedBreakdown: make(map[id.ID][]documents.BreakdownRow),
	}
	for _, d := range docs {
		r.docs[d.ID] = d
	}
	return r
}

func (r *fakeDocRepo) Create(_ context.Context, doc *documents.Document) error {
	r.docs[doc.ID] = doc
	r.created = append(r.created, doc)
	return nil
}

func (r *fakeDocRepo) Update(_ context.Context, doc *documents.Document) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeDocRepo) GetByID(_ context.Context, docID id.ID) (*documents.Document, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("document", docID.String())
	}
	return doc, nil
}

func (r *fakeDocRepo) GetManyForUpdate(_ context.Context, docIDs []id.ID) ([]*documents.Document, error) {
	var out []*documents.Document
	for _, docID := range docIDs {
		if doc, ok := r.docs[docID]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *fakeDocRepo) SaveLines(_ context.Context, docID id.ID, lines []documents.Line) error {
	r.savedLines[docID] = lines
	return nil
}

func (r *fakeDocRepo) SaveBreakdown(_ context.Context, docID id.ID, rows []documents.BreakdownRow) error {
	r.savedBreakdown[docID] = rows
	return nil
}

func (r *fakeDocRepo) UpdateLineFulfillment(_ context.Context, _ *documents.Line) error {
	r.lineWrites++
	return nil
}

func (r *fakeDocRepo) UpdateStatus(_ context.Context, docID, statusID id.ID, editable bool) error {
	r.statusUpdates = append(r.statusUpdates, statusUpdate{docID: docID, statusID: statusID, editable: editable})
	if doc, ok := r.docs[docID]; ok {
		doc.StatusID = statusID
		doc.Editable = editable
	}
	return nil
}

func (r *fakeDocRepo) List(_ context.Context, _ documents.Filter) (domain.ListResult[*documents.Document], error) {
	return domain.ListResult[*documents.Document]{}, nil
}

func (r *fakeDocRepo) SetDeletionMark(_ context.Context, docID id.ID, marked bool) error {
	if doc, ok := r.docs[docID]; ok {
		doc.DeletionMark = marked
	}
	return nil
}

func (r *fakeDocRepo) CrossCheckBreakdown(_ context.Context, _ id.ID) (bool, error) {
	return true, nil
}

type fakeStatusRepo struct {
	defaults    map[documents.DocType]*documents.Status
	generated   map[documents.DocType]map[documents.DocType]*documents.Status
	nonEditable map[documents.DocType]*documents.Status
}

func newFakeStatusRepo() *fakeStatusRepo {
	r := &fakeStatusRepo{
		defaults:    make(map[documents.DocType]*documents.Status),
		generated:   make(map[documents.DocType]map[documents.DocType]*documents.Status),
		nonEditable: make(map[documents.DocType]*documents.Status),
	}
	for _, dt := range []documents.DocType{
		documents.TypeEstimate, documents.TypeOrder, documents.TypeDeliveryNote, documents.TypeInvoice,
	} {
		r.defaults[dt] = documents.NewStatus("draft", "Draft", dt, true)
		r.nonEditable[dt] = documents.NewStatus("closed", "Closed", dt, false)
	}
	return r
}

func (r *fakeStatusRepo) withGenerated(source, target documents.DocType) *fakeStatusRepo {
	if r.generated[source] == nil {
		r.generated[source] = make(map[documents.DocType]*documents.Status)
	}
	st := documents.NewStatus("generated_"+string(target), "Generated", source, false)
	st.GeneratesType = &target
	r.generated[source][target] = st
	return r
}

func (r *fakeStatusRepo) GetByID(_ context.Context, statusID id.ID) (*documents.Status, error) {
	for _, st := range r.defaults {
		if st.ID == statusID {
			return st, nil
		}
	}
	return nil, apperror.NewNotFound("status", statusID.String())
}

func (r *fakeStatusRepo) DefaultFor(_ context.Context, docType documents.DocType) (*documents.Status, error) {
	st, ok := r.defaults[docType]
	if !ok {
		return nil, apperror.NewNotFound("status", string(docType))
	}
	return st, nil
}

func (r *fakeStatusRepo) GeneratedBy(_ context.Context, sourceType, targetType documents.DocType) (*documents.Status, error) {
	if st, ok := r.generated[sourceType][targetType]; ok {
		return st, nil
	}
	return nil, apperror.NewNotFound("status", string(sourceType)+"/"+string(targetType))
}

func (r *fakeStatusRepo) NearestNonEditable(_ context.Context, docType documents.DocType) (*documents.Status, error) {
	st, ok := r.nonEditable[docType]
	if !ok {
		return nil, apperror.NewNotFound("status", string(docType))
	}
	return st, nil
}

func (r *fakeStatusRepo) ListFor(_ context.Context, docType documents.DocType) ([]*documents.Status, error) {
	return []*documents.Status{r.defaults[docType], r.nonEditable[docType]}, nil
}

type fixture struct {
	ctx       context.Context
	repo      *fakeDocRepo
	statuses  *fakeStatusRepo
	pipeline  *Pipeline
	rectifier *Rectifier
}

func newFixture(docs ...*documents.Document) *fixture {
	repo := newFakeDocRepo(docs...)
	statuses := newFakeStatusRepo()
	agg := NewAggregator(money.Default())
	num := numerator.New(&seqQuerier{counters: make(map[string]int64)})

	return &fixture{
		ctx:       tenant.WithTxManager(context.Background(), passthroughTx{}),
		repo:      repo,
		statuses:  statuses,
		pipeline:  NewPipeline(repo, statuses, agg, num),
		rectifier: NewRectifier(repo, statuses, agg, num),
	}
}

func makeOrder(lines ...documents.Line) *documents.Document {
	doc := documents.New(documents.TypeOrder, id.New(), id.New(), id.New(), documents.SubjectCustomer)
	doc.Number = "ORD-2026-00001"
	doc.WarehouseID = id.New()
	for _, l := range lines {
		added := doc.AddLine(l.Description, l.Quantity, l.Price)
		added.Discount1Pct = l.Discount1Pct
		added.Discount2Pct = l.Discount2Pct
		added.TaxPct = l.TaxPct
		added.SurchargePct = l.SurchargePct
		added.WithholdingPct = l.WithholdingPct
		added.Supplied = l.Supplied
		added.IntraCommunity = l.IntraCommunity
		added.Fulfilled = l.Fulfilled
	}
	return doc
}

// --- tests ---

func TestPipeline_OrderToInvoice(t *testing.T) {
	src := makeOrder(
		documents.Line{Quantity: dec("10"), Price: dec("100"), TaxPct: dec("21")},
		documents.Line{Description: "delivery conditions"},
	)
	fx := newFixture(src)
	fx.statuses.withGenerated(documents.TypeOrder, documents.TypeInvoice)

	res, err := fx.pipeline.Transform(fx.ctx, TransformationRequest{
		SourceIDs:  []id.ID{src.ID},
		TargetType: documents.TypeInvoice,
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-00001", res.TargetNumber)
	require.Len(t, fx.repo.created, 1)

	target := fx.repo.created[0]
	assert.Equal(t, documents.TypeInvoice, target.Type)
	assert.Equal(t, src.CounterpartyID, target.CounterpartyID)
	assert.Equal(t, src.WarehouseID, target.WarehouseID)
	require.Len(t, target.Lines, 2, "priced line plus carried informational line")
	assertMoney(t, "1000.00", target.Net)
	assertMoney(t, "1210.00", target.GrandTotal)

	assert.True(t, src.IsFullyFulfilled())
	require.Len(t, fx.repo.statusUpdates, 1, "fully transferred source advances")
	assert.False(t, fx.repo.statusUpdates[0].editable)
	assert.NotEmpty(t, fx.repo.savedLines[target.ID])
	assert.NotEmpty(t, fx.repo.savedBreakdown[target.ID])

	originSeen := false
	for _, l := range target.Lines {
		if l.OriginLineID != nil && *l.OriginLineID == src.Lines[0].LineID {
			originSeen = true
		}
	}
	assert.True(t, originSeen, "priced target lines link back to their origin")
}

func TestPipeline_PartialTransferLeavesSourceOpen(t *testing.T) {
	src := makeOrder(documents.Line{Quantity: dec("10"), Price: dec("50"), TaxPct: dec("21")})
	fx := newFixture(src)
	fx.statuses.withGenerated(documents.TypeOrder, documents.TypeDeliveryNote)

	res, err := fx.pipeline.Transform(fx.ctx, TransformationRequest{
		SourceIDs:  []id.ID{src.ID},
		TargetType: documents.TypeDeliveryNote,
		Quantities: map[id.ID]decimal.Decimal{src.Lines[0].LineID: dec("4")},
	})
	require.NoError(t, err)

	assert.True(t, dec("4").Equal(src.Lines[0].Fulfilled))
	assert.False(t, src.IsFullyFulfilled())
	assert.Empty(t, fx.repo.statusUpdates, "partially fulfilled source keeps its status")

	target := fx.repo.docs[res.TargetID]
	require.Len(t, target.Lines, 1)
	assert.True(t, dec("4").Equal(target.Lines[0].Quantity))
	assertMoney(t, "200.00", target.Net)
}

func TestPipeline_SecondTransferCompletesSource(t *testing.T) {
	src := makeOrder(documents.Line{Quantity: dec("10"), Price: dec("50"), TaxPct: dec("21"), Fulfilled: dec("4")})
	fx := newFixture(src)
	fx.statuses.withGenerated(documents.TypeOrder, documents.TypeDeliveryNote)

	// Request more than remains: the pipeline clamps to 6, not 10.
	res, err := fx.pipeline.Transform(fx.ctx, TransformationRequest{
		SourceIDs:  []id.ID{src.ID},
		TargetType: documents.TypeDeliveryNote,
		Quantities: map[id.ID]decimal.Decimal{src.Lines[0].LineID: dec("10")},
	})
	require.NoError(t, err)

	target := fx.repo.docs[res.TargetID]
	assert.True(t, dec("6").Equal(target.Lines[0].Quantity))
	assert.True(t, src.IsFullyFulfilled())
	require.Len(t, fx.repo.statusUpdates, 1)
}

func TestPipeline_FullyFulfilledSourceHasNothingToTransfer(t *testing.T) {
	src := makeOrder(documents.Line{Quantity: dec("5"), Price: dec("10"), TaxPct: dec("21"), Fulfilled: dec("5")})
	fx := newFixture(src)

	_, err := fx.pipeline.Transform(fx.ctx, TransformationRequest{
		SourceIDs:  []id.ID{src.ID},
		TargetType: documents.TypeInvoice,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeNoCompatibleDocuments))
	assert.Empty(t, fx.repo.created, "nothing persisted on failure")
}

func TestPipeline_InvoiceCannotTransformForward(t *testing.T) {
	src := makeOrder(documents.Line{Quantity: dec("1"), Price: dec("10"), TaxPct: dec("21")})
	src.Type = documents.TypeInvoice
	fx := newFixture(src)

	_, err := fx.pipeline.Transform(fx.ctx, TransformationRequest{
		SourceIDs:  []id.ID{src.ID},
		TargetType: documents.TypeDeliveryNote,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeNoCompatibleDocuments))
}

func TestPipeline_IncompatibleSourceExcludedNotFatal(t *testing.T) {
	ref := makeOrder(documents.Line{Quantity: dec("1"), Price: dec("100"), TaxPct: dec("21")})
	foreign := makeOrder(documents.Line{Quantity: dec("1"), Price: dec("200"), TaxPct: dec("21")})
	foreign.CompanyID = ref.CompanyID
	foreign.CounterpartyID = ref.CounterpartyID
	foreign.WarehouseID = ref.WarehouseID
	foreign.Date = ref.Date.Add(1) // keep the reference deterministic
	foreign.CreatedAt = ref.CreatedAt.Add(1)
	// currency left different

	fx := newFixture(ref, foreign)
	fx.statuses.withGenerated(documents.TypeOrder, documents.TypeInvoice)

	res, err := fx.pipeline.Transform(fx.ctx, TransformationRequest{
		SourceIDs:  []id.ID{ref.ID, foreign.ID},
		TargetType: documents.TypeInvoice,
	})
	require.NoError(t, err)

	require.Len(t, res.Excluded, 1)
	assert.Equal(t, "currencyId", res.Excluded[0].Field)
	assertMoney(t, "100.00", fx.repo.docs[res.TargetID].Net, "only the compatible source contributes")
	assert.True(t, foreign.Lines[0].Fulfilled.IsZero(), "excluded source stays untouched")
}

func TestPipeline_MergeWithTraceLines(t *testing.T) {
	first := makeOrder(documents.Line{Quantity: dec("1"), Price: dec("100"), TaxPct: dec("21")})
	second := makeOrder(documents.Line{Quantity: dec("2"), Price: dec("50"), TaxPct: dec("21")})
	second.Number = "ORD-2026-00002"
	second.CompanyID = first.CompanyID
	second.CounterpartyID = first.CounterpartyID
	second.CurrencyID = first.CurrencyID
	second.WarehouseID = first.WarehouseID
	second.Date = first.Date.Add(1)
	second.CreatedAt = first.CreatedAt.Add(1)

	fx := newFixture(first, second)
	fx.statuses.withGenerated(documents.TypeOrder, documents.TypeInvoice)

	res, err := fx.pipeline.Transform(fx.ctx, TransformationRequest{
		SourceIDs:  []id.ID{first.ID, second.ID},
		TargetType: documents.TypeInvoice,
		TraceLines: true,
	})
	require.NoError(t, err)

	target := fx.repo.docs[res.TargetID]
	// 2 trace lines per source + 1 priced line each
	require.Len(t, target.Lines, 6)
	assert.Equal(t, "----------", target.Lines[0].Description)
	assert.Contains(t, target.Lines[1].Description, "ORD-2026-00001")
	assert.Contains(t, target.Lines[4].Description, "ORD-2026-00002")
	assertMoney(t, "200.00", target.Net)
	assert.True(t, first.IsFullyFulfilled())
	assert.True(t, second.IsFullyFulfilled())
}

func TestPipeline_MissingTerminalStatusFreezesOnly(t *testing.T) {
	src := makeOrder(documents.Line{Quantity: dec("1"), Price: dec("10"), TaxPct: dec("21")})
	currentStatus := id.New()
	src.StatusID = currentStatus
	fx := newFixture(src)
	// no withGenerated: status configuration is incomplete

	_, err := fx.pipeline.Transform(fx.ctx, TransformationRequest{
		SourceIDs:  []id.ID{src.ID},
		TargetType: documents.TypeInvoice,
	})
	require.NoError(t, err)

	require.Len(t, fx.repo.statusUpdates, 1)
	assert.Equal(t, currentStatus, fx.repo.statusUpdates[0].statusID, "status kept, only frozen")
	assert.False(t, fx.repo.statusUpdates[0].editable)
}

func TestPipeline_RequestValidation(t *testing.T) {
	fx := newFixture()

	_, err := fx.pipeline.Transform(fx.ctx, TransformationRequest{TargetType: documents.TypeInvoice})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = fx.pipeline.Transform(fx.ctx, TransformationRequest{
		SourceIDs:  []id.ID{id.New()},
		TargetType: documents.DocType("memo"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestPipeline_ZeroQuantityRequestSkipsLine(t *testing.T) {
	src := makeOrder(
		documents.Line{Quantity: dec("3"), Price: dec("10"), TaxPct: dec("21")},
		documents.Line{Quantity: dec("5"), Price: dec("20"), TaxPct: dec("21")},
	)
	fx := newFixture(src)
	fx.statuses.withGenerated(documents.TypeOrder, documents.TypeInvoice)

	res, err := fx.pipeline.Transform(fx.ctx, TransformationRequest{
		SourceIDs:  []id.ID{src.ID},
		TargetType: documents.TypeInvoice,
		Quantities: map[id.ID]decimal.Decimal{src.Lines[0].LineID: decimal.Zero},
	})
	require.NoError(t, err)

	target := fx.repo.docs[res.TargetID]
	require.Len(t, target.Lines, 1, "explicitly zeroed line stays behind")
	assertMoney(t, "100.00", target.Net)
	assert.True(t, src.Lines[0].Fulfilled.IsZero())
	assert.Empty(t, fx.repo.statusUpdates, "source still has open quantity")
}
