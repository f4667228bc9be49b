package nvme

import "github.com/nisheethbhat/nvmeqemu/cmdset"

// executeCommand dispatches one decoded command to the admin or I/O command
// engine per spec.md §4.5: sqid 0 routes to the admin opcode table, every
// other queue routes to the I/O opcode table. It returns the status to
// place in the completion and the completion's command-specific dword
// (cdw0), which only GET FEATURES populates.
func (c *Controller) executeCommand(qid int, cmd Command) (cmdset.Status, uint32) {
	if qid == 0 {
		return c.dispatchAdmin(cmd)
	}
	return c.dispatchIO(cmd)
}
