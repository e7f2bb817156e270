package filestore

import (
	"testing"
	"time"

	"github.com/petcare/catalog-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeHeaderAndAbsentCells(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 4, 1, 12, 0, 0, 500000000, time.UTC)

	a := domain.NewRecord(4)
	a.Set("id", domain.StringValue("a"))
	a.Set("name", domain.StringValue("Banho"))
	a.Set("value", domain.NumberValue(80))
	a.Set("created_at", domain.TimeValue(created))

	b := domain.NewRecord(3)
	b.Set("id", domain.StringValue("b"))
	b.Set("value", domain.NumberValue(12.5))
	b.Set("created_at", domain.TimeValue(created))

	data, err := encode([]domain.Record{a, b})
	require.NoError(t, err)
	assert.Equal(t,
		"id,name,value,created_at\n"+
			"string:a,string:Banho,number:80,time:2025-04-01 12:00:00.500000\n"+
			"string:b,,number:12.5,time:2025-04-01 12:00:00.500000\n",
		string(data))

	records, err := decode(data)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, a.Equal(records[0]))
	assert.True(t, b.Equal(records[1]))
	assert.False(t, records[1].Has("name"))
}

func TestEmptyStringIsNotAbsent(t *testing.T) {
	t.Parallel()

	r := domain.NewRecord(3)
	r.Set("id", domain.StringValue("a"))
	r.Set("note", domain.StringValue(""))
	r.Set("name", domain.StringValue("Banho"))

	data, err := encode([]domain.Record{r})
	require.NoError(t, err)
	assert.Equal(t, "id,note,name\nstring:a,string:,string:Banho\n", string(data))

	records, err := decode(data)
	require.NoError(t, err)
	require.Len(t, records, 1)
	note, ok := records[0].Get("note")
	require.True(t, ok)
	assert.Equal(t, domain.KindString, note.Kind())
	assert.Equal(t, "", note.Text())
	assert.True(t, r.Equal(records[0]))
}

func TestMixedKindColumnKeepsEachKind(t *testing.T) {
	t.Parallel()

	a := domain.NewRecord(2)
	a.Set("id", domain.StringValue("a"))
	a.Set("value", domain.NumberValue(100))
	b := domain.NewRecord(2)
	b.Set("id", domain.StringValue("b"))
	b.Set("value", domain.StringValue("ten"))
	c := domain.NewRecord(2)
	c.Set("id", domain.StringValue("c"))
	c.Set("value", domain.StringValue("2025-01-01 00:00:00.000000"))

	data, err := encode([]domain.Record{a, b, c})
	require.NoError(t, err)

	records, err := decode(data)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, want := range []domain.Record{a, b, c} {
		assert.True(t, want.Equal(records[i]), "record %d: expected %v, got %v", i, want, records[i])
	}
	v, _ := records[0].Get("value")
	assert.Equal(t, domain.KindNumber, v.Kind())
	assert.Equal(t, 100.0, v.Number())
}

func TestValuesWithSeparatorsRoundTrip(t *testing.T) {
	t.Parallel()

	r := domain.NewRecord(3)
	r.Set("id", domain.StringValue("a"))
	r.Set("price:usd", domain.StringValue("time:not a time, \"quoted\"\nnext line"))
	r.Set("description", domain.StringValue("number:1"))

	data, err := encode([]domain.Record{r})
	require.NoError(t, err)

	records, err := decode(data)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, r.Equal(records[0]), "expected %v, got %v", r, records[0])
}

func TestEncodeRejectsEmptyFieldName(t *testing.T) {
	t.Parallel()

	r := domain.NewRecord(2)
	r.Set("id", domain.StringValue("a"))
	r.Set("", domain.StringValue("x"))

	_, err := encode([]domain.Record{r})
	assert.ErrorIs(t, err, domain.ErrEmptyFieldName)
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	data, err := encode(nil)
	require.NoError(t, err)

	records, err := decode(data)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeCorrupt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"cell without kind", "id,name\nstring:1,Banho\n"},
		{"unknown kind", "id,on\nstring:1,bool:true\n"},
		{"bad number", "id,value\nstring:1,number:cheap\n"},
		{"bad time", "id,created_at\nstring:1,time:yesterday\n"},
		{"row without id", "id,name\n,string:Banho\n"},
		{"empty header name", "id,\nstring:1,string:x\n"},
		{"repeated header name", "id,name,name\nstring:1,string:a,string:b\n"},
		{"short row", "id,name\nstring:1\n"},
		{"unterminated quote", "id,name\nstring:1,\"string:Banho\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode([]byte(tt.data))
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}
