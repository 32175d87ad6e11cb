// Package helper provides test doubles and fixtures shared by the timeline test suites.
package helper
