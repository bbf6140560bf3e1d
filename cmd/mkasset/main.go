package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rotisserie/eris"

	"specter/engine/quarkgl"
	"specter/internal/assets"
)

func main() {
	var (
		inPath  = flag.String("in", "", "Input model (.yaml, .yaml.zst or .yaml.gz).")
		outPath = flag.String("out", "", "Output file (pack/unpack modes).")
		mode    = flag.String("mode", "check", "check|pack|unpack.")
		codec   = flag.String("codec", "zstd", "zstd|gzip (pack mode only).")
	)
	flag.Parse()

	if *inPath == "" {
		fatalf("usage: mkasset -mode check -in model.yaml\n       mkasset -mode pack -in model.yaml -out model.yaml.zst [-codec zstd|gzip]\n       mkasset -mode unpack -in model.yaml.zst -out model.yaml")
	}

	switch strings.ToLower(*mode) {
	case "check":
		st, err := check(*inPath)
		if err != nil {
			fatalf("check: %v", err)
		}
		fmt.Println(st)
	case "pack":
		if *outPath == "" {
			fatalf("pack: -out is required")
		}
		if err := pack(*inPath, *outPath, *codec); err != nil {
			fatalf("pack: %v", err)
		}
	case "unpack":
		if *outPath == "" {
			fatalf("unpack: -out is required")
		}
		if err := unpack(*inPath, *outPath); err != nil {
			fatalf("unpack: %v", err)
		}
	default:
		fatalf("unknown mode: %s", *mode)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

type stats struct {
	name      string
	nodes     int
	meshes    int
	lights    int
	triangles int
}

func (s stats) String() string {
	return fmt.Sprintf("%s: nodes=%d meshes=%d lights=%d triangles=%d", s.name, s.nodes, s.meshes, s.lights, s.triangles)
}

// readModel reads path, decompressing .zst and .gz models.
func readModel(path string) ([]byte, error) {
	known := false
	for _, ext := range []string{assets.ExtModelZstd, assets.ExtModelGzip, assets.ExtModel} {
		known = known || strings.HasSuffix(path, ext)
	}
	if !known {
		return nil, eris.Errorf("%s: expected a %s, %s or %s file", path, assets.ExtModel, assets.ExtModelZstd, assets.ExtModelGzip)
	}
	rc, err := assets.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func check(path string) (stats, error) {
	raw, err := readModel(path)
	if err != nil {
		return stats{}, err
	}
	root, err := quarkgl.DecodeModel(bytes.NewReader(raw))
	if err != nil {
		return stats{}, err
	}
	st := stats{name: root.Name}
	root.Traverse(func(n *quarkgl.Node) {
		st.nodes++
		if n.Mesh != nil && n.Mesh.Geometry != nil {
			st.meshes++
			st.triangles += len(n.Mesh.Geometry.Indices) / 3
		}
		if n.Light != nil {
			st.lights++
		}
	})
	return st, nil
}

func pack(inPath, outPath, codec string) (err error) {
	if _, err := check(inPath); err != nil {
		return err
	}
	raw, err := readModel(inPath)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	var w io.WriteCloser
	switch strings.ToLower(codec) {
	case "zstd":
		w, err = zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	case "gzip":
		w, err = gzip.NewWriterLevel(out, gzip.BestCompression)
	default:
		return eris.Errorf("unknown codec: %s", codec)
	}
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func unpack(inPath, outPath string) error {
	raw, err := readModel(inPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, raw, 0o644)
}
