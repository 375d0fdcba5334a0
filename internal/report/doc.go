// Package report persists a scan report to a file.
//
// The JSON form is the ordered array of outcomes, one object per requested
// platform. The Markdown form is meant for humans and carries the same rows
// plus a summary.
package report
