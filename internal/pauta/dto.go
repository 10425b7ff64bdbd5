package pauta

type criarPautaDTO struct {
	Numero     string `json:"numero"`
	DataSessao string `json:"dataSessao"`
	Descricao  string `json:"descricao"`
}

type incluirDTO struct {
	ProcessoID uint   `json:"processoId"`
	RelatorID  string `json:"relatorId"`
	RevisorID  string `json:"revisorId"`
}

type reordenarDTO struct {
	ProcessoIDs []uint `json:"processoIds"`
}

type abrirSessaoDTO struct {
	Presidente   string   `json:"presidente"`
	Conselheiros []string `json:"conselheiros"`
}

type votoDTO struct {
	ConselheiroID   string `json:"conselheiroId"`
	ConselheiroNome string `json:"conselheiroNome"`
	Sentido         string `json:"sentido"`
	Fundamentacao   string `json:"fundamentacao"`
}

type decisaoDTO struct {
	ProcessoID    uint        `json:"processoId"`
	Tipo          TipoDecisao `json:"tipo"`
	Fundamentacao string      `json:"fundamentacao"`
	Votos         []votoDTO   `json:"votos"`
}

type encerrarDTO struct {
	Ata string `json:"ata"`
}
