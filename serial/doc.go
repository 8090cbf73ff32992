// Package serial is the byte-stream transport switchhub drives device consoles
// through. It opens a Linux tty in raw mode and exposes exactly what a console
// workflow needs: writes, a non-blocking count of pending input, bounded reads
// and a break condition that can be asserted and cleared.
//
// # Basic Usage
//
// Open a console port at the usual 9600 8N1:
//
//	port, err := serial.Open("/dev/ttyUSB0", serial.WithBaudRate(9600))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	port.Write([]byte("show version\r"))
//
//	if n, _ := port.InputWaiting(); n > 0 {
//	    buf := make([]byte, 1024)
//	    n, err = port.Read(buf)
//	}
//
// # Break Signal
//
// Many devices enter their boot monitor or ROM prompt when the line is held in
// a break condition:
//
//	port.SetBreak()
//	time.Sleep(250 * time.Millisecond)
//	port.ClearBreak()
//
// # Port Discovery
//
//	ports, err := serial.ListPorts()
//	for _, p := range ports {
//	    info, _ := serial.GetPortInfo(p)
//	    fmt.Printf("%s: %s\n", info.Path, info.Description)
//	}
//
// # Default Configuration
//
//   - BaudRate: 9600
//   - DataBits: 8
//   - StopBits: 1
//   - Parity: None
//   - ReadTimeout: 100ms
package serial
