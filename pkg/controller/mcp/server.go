// Package mcp serves report operations as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rmts-health/rmts/pkg/interfaces"
	"github.com/rmts-health/rmts/pkg/model"
	"github.com/rmts-health/rmts/pkg/utils/logging"
)

type generateReportParams struct {
	PatientID     string `json:"patientId" jsonschema:"ID of the patient to generate a report for"`
	AppointmentID string `json:"appointmentId,omitempty" jsonschema:"Optional appointment the report belongs to"`
}

type getReportParams struct {
	PatientID string `json:"patientId" jsonschema:"ID of the patient owning the report"`
	ReportID  string `json:"reportId" jsonschema:"ID of the report"`
}

type listReportsParams struct {
	PatientID string `json:"patientId" jsonschema:"ID of the patient"`
}

type tools struct {
	uc interfaces.ReportUseCase
}

// NewServer registers the report tools on a new MCP server
func NewServer(uc interfaces.ReportUseCase, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "rmts-reports",
		Version: version,
	}, nil)

	t := &tools{uc: uc}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_report",
		Description: "Generate a clinical PDF report from the latest sensor readings of a patient and return the stored report metadata",
	}, t.generateReport)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_report",
		Description: "Get metadata of a stored report, including its download URL and sensor summary",
	}, t.getReport)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_reports",
		Description: "List stored reports of a patient, newest first",
	}, t.listReports)

	return server
}

// Serve runs the tool server over stdin/stdout until the client disconnects
func Serve(ctx context.Context, uc interfaces.ReportUseCase, version string) error {
	if err := NewServer(uc, version).Run(ctx, &mcp.StdioTransport{}); err != nil {
		return goerr.Wrap(err, "MCP server stopped")
	}
	return nil
}

func (t *tools) generateReport(ctx context.Context, req *mcp.CallToolRequest, params *generateReportParams) (*mcp.CallToolResult, any, error) {
	report, err := t.uc.Generate(ctx, params.PatientID, params.AppointmentID)
	if err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			return errorResult("patientId is required"), nil, nil
		}
		logging.From(ctx).Error("failed to generate report", "error", err)
		return errorResult("failed to generate report"), nil, nil
	}
	return jsonResult(report)
}

func (t *tools) getReport(ctx context.Context, req *mcp.CallToolRequest, params *getReportParams) (*mcp.CallToolResult, any, error) {
	report, err := t.uc.Get(ctx, params.PatientID, model.ReportID(params.ReportID))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return errorResult(fmt.Sprintf("report %s not found for patient %s", params.ReportID, params.PatientID)), nil, nil
		}
		return nil, nil, err
	}
	return jsonResult(report)
}

func (t *tools) listReports(ctx context.Context, req *mcp.CallToolRequest, params *listReportsParams) (*mcp.CallToolResult, any, error) {
	reports, err := t.uc.List(ctx, params.PatientID)
	if err != nil {
		return nil, nil, err
	}
	if reports == nil {
		reports = []*model.StoredReport{}
	}
	return jsonResult(reports)
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to marshal tool result")
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
