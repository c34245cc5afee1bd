// Package proto implements the command protocol shared by the two boards.
//
// The same command vocabulary travels over two transports: the wireless
// characteristic, limited to MTU-sized operations, and the inter-board bus,
// polled in fixed-size frames. A frame is [opcode][length][payload] with a
// one-byte length, so a frame never exceeds 257 bytes.
//
// The codec is pure and stateless. Chunking for the MTU-limited transport
// is handled by Splitter (outbound) and Assembler (inbound); both boards
// must agree on the opcode table, so new commands are appended and never
// renumbered.
package proto
