package processo

import (
	"fmt"

	"github.com/CamaraFiscal/api-conciliacao/internal/auth"
	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
	"github.com/CamaraFiscal/api-conciliacao/internal/historico"
	"gorm.io/gorm"
)

// Mudanca descreve uma alteração de status e o evento que a originou.
type Mudanca struct {
	Para      Status
	Evento    string
	Titulo    string
	Descricao string
}

// AplicarStatus valida e grava a mudança de status de p dentro de tx,
// acrescentando histórico e auditoria. Repetir o status atual não grava nada
// e devolve false.
func AplicarStatus(tx *gorm.DB, u *auth.Usuario, p *Processo, m Mudanca) (bool, error) {
	if p.Status == m.Para {
		return false, nil
	}
	if err := ValidarTransicao(p.Status, m.Para); err != nil {
		return false, err
	}

	anterior := p.Status
	if err := NewRepository(tx).UpdateStatus(p.ID, m.Para); err != nil {
		return false, erros.InternoErr(err, "erro ao atualizar status do processo")
	}
	p.Status = m.Para

	if m.Evento == "" {
		m.Evento = historico.EventoStatus
	}
	if m.Titulo == "" {
		m.Titulo = fmt.Sprintf("Status alterado para %s", m.Para)
	}
	hist := historico.NewRepository(tx)
	if err := hist.Registrar(u, &historico.HistoricoProcesso{
		ProcessoID:     p.ID,
		Tipo:           m.Evento,
		Titulo:         m.Titulo,
		Descricao:      m.Descricao,
		StatusAnterior: string(anterior),
		StatusNovo:     string(m.Para),
	}); err != nil {
		return false, erros.InternoErr(err, "erro ao registrar histórico")
	}
	if err := hist.Auditar(u, historico.AcaoAtualizar, "Processo", p.ID,
		map[string]any{"status": anterior}, map[string]any{"status": m.Para}); err != nil {
		return false, erros.InternoErr(err, "erro ao registrar auditoria")
	}
	return true, nil
}
