// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"github.com/f-secure-foundry/armory-rot/internal/kv"
)

// kvPort models a key vault status/control register pair.
type kvPort struct {
	ctrl   uint32
	status uint32
}

func newPort() kvPort {
	return kvPort{status: 1 << kv.STATUS_READY}
}

func (p *kvPort) reset() {
	*p = newPort()
}

func (p *kvPort) arm(ctrl uint32) {
	p.ctrl = ctrl
	p.status = 1 << kv.STATUS_READY
}

func (p *kvPort) complete(code uint32) {
	p.status = 1<<kv.STATUS_READY | 1<<kv.STATUS_VALID | (code&0xff)<<kv.STATUS_ERROR
}

func (p *kvPort) enabled() bool {
	return p.ctrl&(1<<kv.READ_CTRL_EN) != 0
}

func (p *kvPort) entry() kv.KeyID {
	return kv.KeyID((p.ctrl >> kv.READ_CTRL_ENTRY) & 0x1f)
}

func (p *kvPort) usage() kv.KeyUsage {
	return kv.KeyUsage((p.ctrl >> kv.WRITE_CTRL_DEST_VALID) & 0x3f)
}
