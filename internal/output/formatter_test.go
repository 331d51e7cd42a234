package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/byronwade/memoria/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatToon, ParseFormat("toon"))
	assert.Equal(t, FormatTable, ParseFormat("table"))
	assert.Equal(t, FormatTable, ParseFormat("nonsense"))
	assert.Equal(t, FormatTable, ParseFormat(""))
}

func TestOutputJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{format: FormatJSON, writer: &buf}

	rep := &report.AnalysisReport{FilePath: "a.go", Risk: report.RiskAssessment{Score: 42, Level: report.RiskMedium}}
	require.NoError(t, f.Output(rep))

	var decoded report.AnalysisReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "a.go", decoded.FilePath)
	assert.Equal(t, 42, decoded.Risk.Score)
}

func TestOutputTableAnalysisReportIncludesRiskAndCoupledFiles(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{format: FormatTable, writer: &buf}

	rep := &report.AnalysisReport{
		FilePath: "internal/app.go",
		Risk:     report.RiskAssessment{Score: 80, Level: report.RiskCritical, Factors: []string{"High volatility (90%)"}},
		Coupled:  []report.CouplingEdge{{File: "internal/other.go", Score: 66, Source: report.SourceGit, Reason: "co-changes"}},
	}
	require.NoError(t, f.Output(rep))

	out := buf.String()
	assert.Contains(t, out, "internal/app.go")
	assert.Contains(t, out, "risk 80/100")
	assert.Contains(t, out, "internal/other.go")
}

func TestOutputTablePartialResultWarns(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{format: FormatTable, writer: &buf}

	rep := &report.AnalysisReport{FilePath: "a.go", Partial: true}
	require.NoError(t, f.Output(rep))
	assert.True(t, strings.Contains(buf.String(), "partial result") || strings.Contains(buf.String(), "WARNING"))
}

func TestOutputTableHistoryHandlesShortSHA(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{format: FormatTable, writer: &buf}

	out := &report.HistorySearchOutput{
		Results:    []report.HistoryMatch{{SHA: "ab", Author: "me", Subject: "short sha"}},
		TotalFound: 1,
	}
	require.NoError(t, f.Output(out))
	assert.Contains(t, buf.String(), "short sha")
}
