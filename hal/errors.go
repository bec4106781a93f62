package hal

import (
	"strconv"

	"panelcode-go/errcode"
)

func unknownPin(n int) error {
	return &errcode.E{C: errcode.UnknownPin, Op: "hal", Msg: "GP" + strconv.Itoa(n)}
}
