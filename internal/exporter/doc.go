// Package exporter writes the results of an analysis run.
//
// ResultsExporter produces the two files the dashboard reads: the combined
// historical/predicted CSV (MergeRows, ExportCSV) and the JSON report
// (BuildReport, ExportJSON). ReadResultsCSV and ReadReport load them back.
//
// WorkbookExporter writes the same data as an XLSX workbook, and
// ChartExporter renders both trends to a PNG.
//
// Example usage:
//
//	results := exporter.NewResultsExporter(logger)
//	rows := exporter.MergeRows(dataset, predictions)
//	if err := results.ExportCSV("data/ai_analysis_results.csv", rows); err != nil {
//		return err
//	}
//
//	report := exporter.BuildReport(dataset, market.R2, adoption.R2, predictions)
//	err := results.ExportJSON("data/ai_analysis_results.json", report)
package exporter
