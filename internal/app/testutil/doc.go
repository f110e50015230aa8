// Package testutil provides test doubles shared by the bridge packages.
//
// MockModel implements provider.Model on top of testify's mock.Mock:
//
//	model := testutil.NewMockModel("mock").WithSegments("/tmp/a.wav", "hello", "world")
//	model.ExpectTranscribe("/tmp/a.wav").Return(nil)
//	...
//	model.AssertExpectations(t)
//
// Segments configured with WithSegments are emitted before the mocked return
// value, so a failing call still shows its partial output.
package testutil
