package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/config"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/model"

	"go.uber.org/zap"
)

type checkReport struct {
	Status model.Status `json:"status"`
	Result model.Result `json:"result"`
}

// checkGateway probes the configured endpoint once and prints the outcome.
// Returns the process exit code.
func checkGateway(cfg *config.Config, logger *zap.Logger) int {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GatewayTimeout*2)
	defer cancel()

	gw := newGateway(cfg, logger)
	report := checkReport{
		Status: gw.Status(),
		Result: gw.TestConnection(ctx),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Error("Failed to write report", zap.Error(err))
		return 1
	}

	if !report.Result.Success {
		return 1
	}
	return 0
}
