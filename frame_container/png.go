// chunk reading adapted from https://github.com/parsiya/Go-Security/blob/master/png-tests/png-chunk-extraction.go

package frame_container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
)

// 89 50 4E 47 0D 0A 1A 0A
var pngHeader = "\x89\x50\x4E\x47\x0D\x0A\x1A\x0A"

const (
	iHDRLength = 13
	acTLLength = 8
	fcTLLength = 26
)

// APNG dispose_op and blend_op values.
const (
	apngDisposeNone       = 0
	apngDisposeBackground = 1
	apngDisposePrevious   = 2

	apngBlendSource = 0
	apngBlendOver   = 1
)

// uInt32ToInt converts a 4 byte big-endian buffer to int.
func uInt32ToInt(buf []byte) (int, error) {
	if len(buf) == 0 || len(buf) > 4 {
		return 0, errors.New("invalid buffer")
	}

	return int(binary.BigEndian.Uint32(buf)), nil
}

// Each chunk starts with a uint32 length (big endian), then 4 byte name,
// then data and finally the CRC32 of the chunk data.
type chunk struct {
	Length int
	CType  string
	Data   []byte
}

// populate will read bytes from the reader and populate a chunk.
func (c *chunk) populate(r *bytes.Reader) error {
	buf := make([]byte, 4)

	// Read first four bytes == chunk length.
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}

	var err error

	c.Length, err = uInt32ToInt(buf)
	if err != nil {
		return errors.New("cannot convert length to int")
	}

	// Read second four bytes == chunk type.
	if _, err = io.ReadFull(r, buf); err != nil {
		return err
	}

	c.CType = string(buf)

	if c.Length > r.Len() {
		return fmt.Errorf("chunk %q declares %d bytes, only %d left", c.CType, c.Length, r.Len())
	}

	tmp := make([]byte, c.Length)

	if _, err = io.ReadFull(r, tmp); err != nil {
		return err
	}

	c.Data = tmp

	// The CRC is recomputed when frames are re-encoded, so it is only skipped here.
	if _, err = io.ReadFull(r, buf); err != nil {
		return err
	}

	return nil
}

func writeChunk(w *bytes.Buffer, ctype string, data []byte) {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	w.Write(length)
	w.WriteString(ctype)
	w.Write(data)

	crc := crc32.NewIEEE()
	crc.Write([]byte(ctype))
	crc.Write(data)

	sum := make([]byte, 4)
	binary.BigEndian.PutUint32(sum, crc.Sum32())
	w.Write(sum)
}

func readChunks(data []byte) ([]*chunk, error) {
	r := bytes.NewReader(data)

	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	if string(header) != pngHeader {
		return nil, fmt.Errorf("wrong PNG header: got %x", header)
	}

	var chunks []*chunk

	for {
		var c chunk

		err := (&c).populate(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read chunk %d: %w", len(chunks), err)
		}

		chunks = append(chunks, &c)

		if c.CType == "IEND" {
			break
		}
	}

	if len(chunks) == 0 || chunks[0].CType != "IHDR" {
		return nil, errors.New("missing IHDR chunk")
	}

	if chunks[0].Length != iHDRLength {
		return nil, fmt.Errorf("invalid IHDR length: got %d - expected %d", chunks[0].Length, iHDRLength)
	}

	ihdr := chunks[0].Data
	if err := checkCanvas(int(binary.BigEndian.Uint32(ihdr[0:4])), int(binary.BigEndian.Uint32(ihdr[4:8]))); err != nil {
		return nil, err
	}

	return chunks, nil
}

type apngFrame struct {
	width     int
	height    int
	xOffset   int
	yOffset   int
	disposeOp byte
	blendOp   byte
	data      [][]byte
}

func (f *apngFrame) bounds() image.Rectangle {
	return image.Rect(f.xOffset, f.yOffset, f.xOffset+f.width, f.yOffset+f.height)
}

type apngContainer struct {
	width     int
	height    int
	ihdr      []byte
	header    []*chunk
	numFrames int
	frames    []*apngFrame
}

// decodePNG reads a PNG stream. Streams without an acTL chunk are plain
// single frame stills; the rest are animated and keep their chunks around so
// each frame can be rebuilt as a standalone PNG on demand.
func decodePNG(data []byte) (Container, error) {
	chunks, err := readChunks(data)
	if err != nil {
		return nil, err
	}

	animated := false
	for _, c := range chunks {
		if c.CType == "acTL" {
			animated = true
			break
		}
	}

	if !animated {
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode png: %w", err)
		}

		return &stillContainer{format: "png", img: img}, nil
	}

	return parseAPNG(chunks)
}

func parseAPNG(chunks []*chunk) (*apngContainer, error) {
	ihdr := chunks[0].Data

	c := &apngContainer{
		width:  int(binary.BigEndian.Uint32(ihdr[0:4])),
		height: int(binary.BigEndian.Uint32(ihdr[4:8])),
		ihdr:   ihdr,
	}

	if c.width <= 0 || c.height <= 0 {
		return nil, fmt.Errorf("invalid dimensions in IHDR - got %dx%d", c.width, c.height)
	}

	var current *apngFrame
	var defaultData [][]byte
	seenData := false

	for _, ch := range chunks[1:] {
		switch ch.CType {
		case "acTL":
			if ch.Length != acTLLength {
				return nil, fmt.Errorf("invalid acTL length: got %d - expected %d", ch.Length, acTLLength)
			}
			c.numFrames = int(binary.BigEndian.Uint32(ch.Data[0:4]))
		case "fcTL":
			frame, err := parseFCTL(ch)
			if err != nil {
				return nil, err
			}
			if frame.xOffset+frame.width > c.width || frame.yOffset+frame.height > c.height {
				return nil, fmt.Errorf("frame %d exceeds canvas %dx%d", len(c.frames), c.width, c.height)
			}
			c.frames = append(c.frames, frame)
			current = frame
		case "IDAT":
			seenData = true
			// Without a preceding fcTL the default image sits outside the
			// animation but is still shown as the first frame.
			if current != nil {
				current.data = append(current.data, ch.Data)
			} else {
				defaultData = append(defaultData, ch.Data)
			}
		case "fdAT":
			seenData = true
			if current == nil {
				return nil, errors.New("fdAT chunk before any fcTL")
			}
			if ch.Length < 4 {
				return nil, errors.New("fdAT chunk too short")
			}
			current.data = append(current.data, ch.Data[4:])
		case "IEND":
		default:
			if !seenData {
				c.header = append(c.header, ch)
			}
		}
	}

	if c.numFrames <= 0 {
		return nil, errors.New("animation declares no frames")
	}

	if len(defaultData) > 0 {
		c.frames = append([]*apngFrame{{
			width:     c.width,
			height:    c.height,
			disposeOp: apngDisposeNone,
			blendOp:   apngBlendSource,
			data:      defaultData,
		}}, c.frames...)
		c.numFrames++
	}

	return c, nil
}

func parseFCTL(ch *chunk) (*apngFrame, error) {
	if ch.Length != fcTLLength {
		return nil, fmt.Errorf("invalid fcTL length: got %d - expected %d", ch.Length, fcTLLength)
	}

	d := ch.Data

	frame := &apngFrame{
		width:     int(binary.BigEndian.Uint32(d[4:8])),
		height:    int(binary.BigEndian.Uint32(d[8:12])),
		xOffset:   int(binary.BigEndian.Uint32(d[12:16])),
		yOffset:   int(binary.BigEndian.Uint32(d[16:20])),
		disposeOp: d[24],
		blendOp:   d[25],
	}

	if frame.width <= 0 || frame.height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", frame.width, frame.height)
	}

	return frame, nil
}

func (c *apngContainer) Format() string {
	return "apng"
}

func (c *apngContainer) FrameCount() int {
	return c.numFrames
}

func (c *apngContainer) Frame(index int) (image.Image, error) {
	if index < 0 || index >= c.numFrames {
		return nil, fmt.Errorf("frame %d out of range (0-%d)", index, c.numFrames-1)
	}

	if index >= len(c.frames) {
		return nil, fmt.Errorf("frame %d missing: animation holds %d of %d declared frames", index, len(c.frames), c.numFrames)
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, c.width, c.height))

	for i := 0; i <= index; i++ {
		frame := c.frames[i]

		img, err := c.decodeFrame(frame)
		if err != nil {
			return nil, fmt.Errorf("decode frame %d: %w", i, err)
		}

		dispose := frame.disposeOp
		if i == 0 && dispose == apngDisposePrevious {
			dispose = apngDisposeBackground
		}

		var previous *image.NRGBA
		if dispose == apngDisposePrevious {
			previous = imaging.Clone(canvas)
		}

		op := draw.Over
		if frame.blendOp == apngBlendSource {
			op = draw.Src
		}

		draw.Draw(canvas, frame.bounds(), img, img.Bounds().Min, op)

		if i == index {
			break
		}

		switch dispose {
		case apngDisposeBackground:
			draw.Draw(canvas, frame.bounds(), image.Transparent, image.Point{}, draw.Src)
		case apngDisposePrevious:
			canvas = previous
		}
	}

	return imaging.Clone(canvas), nil
}

// decodeFrame wraps one frame's image data in a standalone PNG stream that
// reuses the animation's IHDR (resized to the frame) and its leading
// ancillary chunks such as PLTE and tRNS.
func (c *apngContainer) decodeFrame(frame *apngFrame) (image.Image, error) {
	if len(frame.data) == 0 {
		return nil, errors.New("frame has no image data")
	}

	ihdr := make([]byte, len(c.ihdr))
	copy(ihdr, c.ihdr)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(frame.width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(frame.height))

	var buf bytes.Buffer

	buf.WriteString(pngHeader)
	writeChunk(&buf, "IHDR", ihdr)

	for _, ch := range c.header {
		writeChunk(&buf, ch.CType, ch.Data)
	}

	for _, data := range frame.data {
		writeChunk(&buf, "IDAT", data)
	}

	writeChunk(&buf, "IEND", nil)

	return png.Decode(&buf)
}
