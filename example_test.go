package fmmap_test

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hupe1980/fmmap"
)

func Example() {
	dir, _ := os.MkdirTemp("", "fmmap-example")
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "sync.mem")

	f, err := fmmap.DefaultOptions().MaxSize(8096).CreateMut(path)
	if err != nil {
		fmt.Println(err)
		return
	}
	_ = f.WriteAll([]byte("Hello, sync file!"), 0)
	_ = f.WriteInt8(-8, 100)
	_ = f.Flush()
	_ = f.Close()

	r, err := fmmap.Open(path)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer r.Close()

	b, _ := r.Bytes(0, 17)
	v, _ := r.ReadInt8(100)
	fmt.Println(string(b), v, r.Len())
	// Output: Hello, sync file! -8 8096
}

func ExampleMmapFileMut_Truncate() {
	f := fmmap.NewMemoryMut("scratch", []byte("abc"))
	defer f.Close()

	_ = f.Truncate(context.Background(), 8)
	_ = f.WriteUint32(0xCAFEBABE, 4, binary.BigEndian)
	fmt.Printf("%d % x\n", f.Len(), f.AsSlice())
	// Output: 8 61 62 63 00 ca fe ba be
}

func ExampleMmapFileMut_Freeze() {
	f := fmmap.NewMemoryMut("frozen", []byte("read me"))

	ro, _ := f.Freeze()
	defer ro.Close()

	fmt.Println(string(ro.AsSlice()), f.Backend(), ro.Backend())
	// Output: read me empty memory
}
