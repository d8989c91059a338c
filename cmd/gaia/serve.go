package main

import (
	"net/http"

	"github.com/SpikedPunchVictim/gaia/hub"
	"github.com/SpikedPunchVictim/gaia/hub/auth"
	"github.com/SpikedPunchVictim/gaia/hub/wshub"
	"github.com/SpikedPunchVictim/gaia/log"
	"github.com/SpikedPunchVictim/gaia/rfc"
	"github.com/SpikedPunchVictim/gaia/uid"
)

func serve(args []string) error {
	conf, err := loadConfig(*confFlag)
	if err != nil {
		return err
	}
	l := log.Root.With("mod", "serve")
	au := rfc.NewAuthority()
	if err := au.Mount(uid.ID(conf.Root)); err != nil {
		return err
	}
	h := hub.NewHub()
	srvs := hub.Services{"ping": hub.ServiceFunc(func(m *hub.Msg) interface{} {
		return "pong"
	})}
	go h.Run(hub.Routers{&rfc.Endpoint{Auth: au, Log: l}, srvs.Router(h, l)})

	o := &wshub.Options{Log: l}
	signer := &auth.Bcrypt{Cost: conf.Cost}
	if len(conf.Users) > 0 {
		st := &auth.Tokens{}
		for user, pass := range conf.Users {
			signed, err := signer.Sign(pass)
			if err != nil {
				return err
			}
			if err := st.Save(user, signed); err != nil {
				return err
			}
		}
		o.Check = auth.CheckUsers(signer, st)
	} else if conf.Pass != "" {
		signed, err := signer.Sign(conf.Pass)
		if err != nil {
			return err
		}
		o.Check = auth.Check(signer, signed)
	}
	mux := http.NewServeMux()
	mux.Handle("/hub", wshub.Serve(h, o))
	l.Debug("listening", "addr", conf.Addr)
	return http.ListenAndServe(conf.Addr, mux)
}
