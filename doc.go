// Package switchhub runs declarative console workflows against devices on
// serial links.
//
// A Workflow is an ordered list of steps. Each step either transmits a
// command and then waits for a pattern (or just listens for a while), or
// repeatedly interrupts the device with a literal payload or a hardware break
// until a boot prompt appears. Pager prompts such as "--More--" are answered
// automatically.
//
// # Running a workflow
//
//	wf, err := switchhub.LoadWorkflow("workflows/show-version.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	eng, err := switchhub.New("/dev/ttyUSB0", wf)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go eng.Run(ctx)
//
//	st := eng.State() // safe from any goroutine
//	fmt.Println(st.Message)
//
// Stop asks a running engine to halt at its next poll. A stopped engine
// reports neither Complete nor Failed; Phase tells it apart from one that is
// still running.
//
// # Several ports
//
// Registry keeps one engine per port and refuses to start a second workflow
// on a port whose engine is still running.
package switchhub
