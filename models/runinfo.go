package models

import "time"

// FinishedTimeLayout is the timestamp format used in run_info.json. Kept in
// lockstep with the deployed static site, which parses it client-side.
const FinishedTimeLayout = "01/02/2006, 15:04:05"

// CategoriesInfo summarizes a completed build for the run-metadata writer.
type CategoriesInfo struct {
	CategoriesCount     int
	ArticlesCount       int
	Finished            time.Time
	BalancingModOperand uint32
}

// RunInfo is the JSON document written to <dest>/run_info.json. The
// Last-Modified headers of the dump assets are carried alongside the build
// summary so a later run can detect that nothing changed upstream.
type RunInfo struct {
	CategoryLinksModified string `json:"categoryLinksModified"`
	PagesModified         string `json:"pagesModified"`
	CategoriesCount       int    `json:"categoriesCount"`
	ArticlesCount         int    `json:"articlesCount"`
	Finished              string `json:"finished"`
	BalancingModOperand   uint32 `json:"balancingModOperand"`
}

// NewRunInfo combines a build summary with the dump freshness headers.
func NewRunInfo(info CategoriesInfo, categoryLinksModified, pagesModified string) RunInfo {
	return RunInfo{
		CategoryLinksModified: categoryLinksModified,
		PagesModified:         pagesModified,
		CategoriesCount:       info.CategoriesCount,
		ArticlesCount:         info.ArticlesCount,
		Finished:              info.Finished.Format(FinishedTimeLayout),
		BalancingModOperand:   info.BalancingModOperand,
	}
}
