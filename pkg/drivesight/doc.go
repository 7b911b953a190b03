// Package drivesight analyzes LTE drive-test telemetry.
//
// An Analyzer turns a batch of timestamped, geotagged radio samples
// into per-category KPIs, geographic problem areas, and ranked
// root-cause findings:
//
//	a, err := drivesight.New(
//		drivesight.WithThresholds(-105, -15, 5),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	run, err := a.AnalyzeFile(ctx, "drive.csv")
//
// Analyzers are stateless between runs and safe for concurrent use.
package drivesight
