// Package shared holds helpers used by more than one package. It has no
// production code of its own.
//
// The testutil subpackage provides:
//
//	- BufferedSlogHandler, a slog.Handler that records entries for assertions
//	- KPI fixtures that build small datasets and write them as Parquet files
//
// Example usage:
//
//	func TestLoader(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    dir := testutil.WriteDataset(t, testutil.SampleDataset())
//	    ...
//	    testutil.AssertNoErrors(t, logs)
//	}
package shared
