// Command nvmectl is a reference driver for the emulated NVMe controller: it
// wires up a FakeHost stand-in for the hypervisor, brings the controller up
// through the admin queue bring-up sequence, and submits an Identify
// Controller command, printing what a guest driver would see. It exists the
// way cmd/smartctl exists for the teacher's SMART library: a runnable
// demonstration of the core package, not a production guest driver.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	nvmeqemu "github.com/nisheethbhat/nvmeqemu"
	"github.com/nisheethbhat/nvmeqemu/hostio"
	"github.com/nisheethbhat/nvmeqemu/regs"
)

func main() {
	imagePath := flag.String("image", "", "path to the backing image file (created if missing)")
	imageSize := flag.Int64("size", nvmeqemu.DefaultImageSize, "backing image size in bytes")
	configPath := flag.String("config", "", "optional YAML register/image override file")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := nvmeqemu.Config{ImagePath: *imagePath, ImageSize: *imageSize}
	if *configPath != "" {
		loaded, err := nvmeqemu.LoadConfig(*configPath)
		if err != nil {
			log.WithError(err).Fatal("loading config")
		}
		cfg = loaded
	}
	if cfg.ImagePath == "" {
		cfg.ImagePath = filepath.Join(os.TempDir(), "nvmectl.img")
	}

	log.WithFields(logrus.Fields{
		"image": cfg.ImagePath,
		"size":  nvmeqemu.FormatBytes(uint64(cfg.ImageSize)),
	}).Info("starting controller")

	// Must comfortably cover the fixed guest addresses bringUp/identify
	// below write into (admin queues at 0x1000_0000/0x1010_0000, identify
	// buffer at 0x2000_0000).
	host := hostio.NewFakeHost(768 << 20)
	c := nvmeqemu.NewController(host, cfg)

	bringUp(c)
	if c.ReadRegister(regs.OffCSTS, 4)&1 == 0 {
		log.Fatal("controller did not become ready")
	}
	log.Info("controller ready (CSTS.RDY=1)")

	identify(host, c, log)
}

// bringUp programs a 64-entry admin SQ/CQ pair at fixed guest addresses and
// enables the controller, mirroring spec.md §8 scenario 1.
func bringUp(c *nvmeqemu.Controller) {
	const (
		adminSQBase = 0x1000_0000
		adminCQBase = 0x1010_0000
	)
	c.WriteRegister(regs.OffAQA, 0x003F003F, 4)
	c.WriteRegister(regs.OffASQLow, adminSQBase, 4)
	c.WriteRegister(regs.OffASQHigh, 0, 4)
	c.WriteRegister(regs.OffACQLow, adminCQBase, 4)
	c.WriteRegister(regs.OffACQHigh, 0, 4)
	c.WriteRegister(regs.OffCC, 0x00460001, 4)
}

// identify submits a single admin Identify Controller command and prints
// the vendor id and model number DMA'd back into guest memory.
func identify(host *hostio.FakeHost, c *nvmeqemu.Controller, log *logrus.Logger) {
	const (
		sqBase     = 0x1000_0000
		cqBase     = 0x1010_0000
		identBufGPA = 0x2000_0000
	)

	cmd := make([]byte, nvmeqemu.CommandSize)
	cmd[0] = 0x06 // Identify
	cmd[2], cmd[3] = 7, 0
	putLE64(cmd[24:32], identBufGPA)
	putLE32(cmd[40:44], 1) // CNS=1: controller identify

	copy(host.RAM[sqBase:], cmd)
	c.OnDoorbellWrite(nvmeqemu.DoorbellBase, 1)
	host.Drain(4)

	vendorID := uint16(host.RAM[identBufGPA]) | uint16(host.RAM[identBufGPA+1])<<8
	model := string(host.RAM[identBufGPA+24 : identBufGPA+64])

	fmt.Printf("vendor id: %#04x\n", vendorID)
	fmt.Printf("model: %q\n", model)

	var cqe [nvmeqemu.CompletionSize]byte
	copy(cqe[:], host.RAM[cqBase:])
	status := uint16(cqe[14]) | uint16(cqe[15])<<8
	log.WithField("status", status).Debug("identify completion")
}

func putLE64(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (8 * uint(i)))
	}
}

func putLE32(dst []byte, v uint32) {
	for i := 0; i < 4; i++ {
		dst[i] = byte(v >> (8 * uint(i)))
	}
}
