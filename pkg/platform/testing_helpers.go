package platform

// noopBridge is a NativeBridge that accepts all calls without side effects.
type noopBridge struct{}

func (noopBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	return DefaultCodec.Encode(nil)
}
func (noopBridge) StartEventStream(string) error { return nil }
func (noopBridge) StopEventStream(string) error  { return nil }

// SetupTestBridge installs a no-op native bridge and synchronous dispatch
// function for testing. The cleanup function should be testing.T.Cleanup or
// equivalent; it registers a teardown that calls ResetForTest.
//
//	platform.SetupTestBridge(t.Cleanup)
func SetupTestBridge(cleanup func(func())) {
	SetupTestBridgeWith(noopBridge{}, cleanup)
}

// SetupTestBridgeWith is SetupTestBridge with a caller-provided bridge,
// typically a fake host.
func SetupTestBridgeWith(bridge NativeBridge, cleanup func(func())) {
	SetNativeBridge(bridge)
	RegisterDispatch(func(cb func()) { cb() })
	cleanup(ResetForTest)
}
