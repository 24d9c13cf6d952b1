// Package portal implements the protocol engine of an emulated toy-figurine
// portal.
//
// The host talks to the portal with fixed 32-byte HID reports whose first
// byte is an ASCII opcode:
//
//	A  activate          [A][slot][0xFF][0x77]
//	Q  query block       [Q][slot][block][16 data bytes]
//	W  write block       [W][slot][block]
//	R  reset             [R][0x02][0x18]
//	S  status            [S][4-byte slot bitmap][counter][activation]
//	C, J, L, M           color/sound/light/speaker, no response
//
// Responses are zero-padded to 32 bytes. Unknown opcodes and reports shorter
// than 32 bytes produce no response.
//
// # Slots
//
// Each [Slot] owns zero or one toy image. Query and Write select a slot by
// the low nibble of their selector byte (0-based). A slot moves through
//
//	Empty -> Added -> Present -> Removed -> Empty
//
// Added and Removed are reported by exactly one Status response before they
// settle. Placing a toy whose image cannot be loaded leaves the slot Empty.
//
// # Engine
//
// A [Portal] runs a single-goroutine poll loop over a [hal.ReportHAL]:
//
//	p, err := portal.New(portal.DefaultConfig(), transport, store)
//	if err != nil {
//	    return err // pkg.ErrDeviceNotFound is fatal
//	}
//	go p.Run(ctx)
//	p.Insert(ctx, 0) // toy placed on slot 0
//
// Slot, toy and session state are touched only by the loop. Presence events
// posted from other goroutines are queued and applied between polls, and
// [Portal.Snapshot] exposes the state published at the end of each cycle.
package portal
