// Package ringfile provides a fixed-capacity circular log stored in a single
// file. Records of any length are appended after the newest record; when the
// file is full the oldest whole records are discarded to make room.
//
// File layout: a 32-byte header (magic "RING", version, capacity, head, tail)
// followed by capacity bytes of data region. Each record is framed as a
// varint length followed by the payload and may wrap around the end of the
// data region.
//
// The library is organised into several files for clarity:
//
//	options.go      – configuration struct & defaults
//	config.go       – YAML options file & size parsing
//	ring.go         – Mode, Ring, Create & Open
//	region.go       – file / mmap backing store
//	header.go       – on-disk header encoding
//	addressing.go   – logical to physical offsets & wraparound
//	varint.go       – record length prefix codec
//	append.go       – write path & eviction
//	reader.go       – sequential read path
//	buffer.go       – pooled frame buffers
//	stats.go        – usage & activity counters
//	flush_close.go  – flush & close helpers
//
// The ringfile command in cmd/ringfile reads, appends to and inspects rings
// from the shell.
//
// Writing:
//
//	r, err := ringfile.Create("events.ring", 100<<20)
//	...
//	r.Write([]byte("Hello, World!"))
//	r.Close()
//
// Reading:
//
//	r, err := ringfile.Open("events.ring", ringfile.ModeRead)
//	...
//	for {
//		rec, err := r.ReadRecord()
//		if err == io.EOF {
//			break
//		}
//		...
//	}
package ringfile
