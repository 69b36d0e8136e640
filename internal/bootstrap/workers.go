package bootstrap

import (
	"burnout-workers/internal/common/camunda"
	"burnout-workers/internal/common/config"

	evaluatemetricalert "burnout-workers/internal/workers/alerts/evaluate-metric-alert"
	generatesmartalert "burnout-workers/internal/workers/alerts/generate-smart-alert"
	generatereport "burnout-workers/internal/workers/burnout/generate-report"
	predictburnout "burnout-workers/internal/workers/burnout/predict-burnout"
)

// StartWorkers opens a job worker for every enabled task type. It is a no-op when
// Zeebe is disabled.
func (a *App) StartWorkers() {
	if a.Camunda == nil {
		a.Logger.Info("camunda disabled, no workers started", nil)
		return
	}
	zc := a.Camunda.GetClient()
	cfg := a.Config

	start := func(taskType string, handler camunda.JobHandler) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if w := camunda.StartWorker(zc, taskType, wcfg, handler, a.Obs, a.Logger); w != nil {
			a.workers = append(a.workers, w)
		}
	}

	if config.IsWorkerEnabled(cfg, predictburnout.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, predictburnout.TaskType)
		pcfg := predictburnout.LoadConfig()
		pcfg.Timeout = config.GetDuration(wcfg.Timeout)
		pcfg.DefaultLookback = cfg.Prediction.Lookback()
		start(predictburnout.TaskType, predictburnout.NewHandler(pcfg, a.Orchestrator, a.Validator, a.Logger))
	}

	if config.IsWorkerEnabled(cfg, generatereport.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, generatereport.TaskType)
		rcfg := generatereport.LoadConfig()
		rcfg.Timeout = config.GetDuration(wcfg.Timeout)
		start(generatereport.TaskType, generatereport.NewHandler(rcfg, a.Reports, a.Validator, a.Logger))
	}

	if config.IsWorkerEnabled(cfg, evaluatemetricalert.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, evaluatemetricalert.TaskType)
		ecfg := evaluatemetricalert.LoadConfig()
		ecfg.Timeout = config.GetDuration(wcfg.Timeout)
		start(evaluatemetricalert.TaskType, evaluatemetricalert.NewHandler(ecfg, a.Thresholds, a.Validator, a.Logger))
	}

	if config.IsWorkerEnabled(cfg, generatesmartalert.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, generatesmartalert.TaskType)
		scfg := generatesmartalert.LoadConfig()
		scfg.Timeout = config.GetDuration(wcfg.Timeout)
		start(generatesmartalert.TaskType, generatesmartalert.NewHandler(scfg, a.SmartAlerts, a.Validator, a.Logger))
	}

	a.Logger.Info("workers registered", map[string]interface{}{"count": len(a.workers)})
}

func (a *App) StopWorkers() {
	for _, w := range a.workers {
		w.Stop()
	}
	a.workers = nil
}
