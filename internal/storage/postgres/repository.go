package postgres

import (
	"rescueconnect/internal/service"
)

var (
	_ service.AlertRepository  = (*AlertRepo)(nil)
	_ service.AgencyRepository = (*AgencyRepo)(nil)
)

func (p *Postgres) Alerts() service.AlertRepository    { return p.Alert }
func (p *Postgres) Agencies() service.AgencyRepository { return p.Agency }
