// Package testutil provides shared test doubles for echoscript.
//
// mock_services.go holds testify/mock implementations of the HTTP service
// interfaces; fixtures.go holds sample jobs and audio.
package testutil
