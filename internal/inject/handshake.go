package inject

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/samuelgr/Hookshot-sub001/internal/convert"
	"github.com/samuelgr/Hookshot-sub001/internal/patch/msgpack"
)

// TokenPrefix marks the single command line argument of a relaunched
// injector, the rest of the token is the decimal value of an inherited
// file mapping handle that carries the hand-off request.
const TokenPrefix = "|"

// mappingSize is the size of the shared mapping, the encoded request
// is length prefixed inside it.
const mappingSize = 4096

// Request is the hand-off one injector writes for its sibling of the
// other architecture. The wrong architecture spawn is already
// terminated when the sibling starts, it launches the target again
// itself.
type Request struct {
	Path       string   `msgpack:"path"`
	Args       []string `msgpack:"args"`
	Relaunched bool     `msgpack:"relaunched"`
}

// IsToken is used to report whether a command line argument is a
// hand-off token rather than an executable path.
func IsToken(arg string) bool {
	return strings.HasPrefix(arg, TokenPrefix)
}

// EncodeToken is used to build the hand-off argument from a mapping
// handle value.
func EncodeToken(handle uint64) string {
	return TokenPrefix + strconv.FormatUint(handle, 10)
}

// ParseToken is used to recover the mapping handle value from a
// hand-off argument.
func ParseToken(token string) (uint64, error) {
	if !strings.HasPrefix(token, TokenPrefix) {
		return 0, errors.Errorf("not a hand-off token: %q", token)
	}
	handle, err := strconv.ParseUint(token[len(TokenPrefix):], 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid mapping handle in token %q", token)
	}
	if handle == 0 {
		return 0, errors.New("zero mapping handle in token")
	}
	return handle, nil
}

// encodeRequest is used to serialize a request into the image of the
// shared mapping, a four byte length prefix bounds the decoder.
func encodeRequest(req *Request) ([]byte, error) {
	data, err := msgpack.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode hand-off request")
	}
	if 4+len(data) > mappingSize {
		return nil, errors.Errorf("hand-off request is too large: %d bytes", len(data))
	}
	buf := make([]byte, 4+len(data))
	copy(buf, convert.LEUint32ToBytes(uint32(len(data))))
	copy(buf[4:], data)
	return buf, nil
}

// decodeRequest is used to recover a request from the image of the
// shared mapping, unknown fields are rejected.
func decodeRequest(view []byte) (*Request, error) {
	if len(view) < 4 {
		return nil, errors.New("hand-off mapping is too small")
	}
	size := convert.LEBytesToUint32(view)
	if size == 0 || int(size) > len(view)-4 {
		return nil, errors.Errorf("invalid hand-off request size: %d", size)
	}
	req := Request{}
	err := msgpack.Unmarshal(view[4:4+size], &req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode hand-off request")
	}
	if req.Path == "" {
		return nil, errors.New("hand-off request carries no target path")
	}
	return &req, nil
}
