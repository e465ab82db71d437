// Package hwscan reports the hardware video encode/decode capabilities of
// the host.
//
// A native scanner library does the driver queries and hands back a
// nested C structure. Scanner turns one call of that library into a plain
// Go value: it runs the scan, copies the whole tree out with Unmarshal,
// and releases the native tree before returning, on every path.
//
//	lib, err := native.Open("")
//	if err != nil {
//		return err
//	}
//	defer lib.Close()
//
//	devices, err := hwscan.NewScanner(lib).ScanDevices()
//	switch {
//	case errors.Is(err, hwscan.ErrDriverFailure):
//		// a driver could not be queried
//	case err != nil:
//		return err
//	}
//
// Scans are slow. Services should put a Cache in front of the Scanner.
//
// Known behavior: if the scanner reports the same codec twice for one
// device, Device.Codecs keeps the later entry.
package hwscan
